package models

import "testing"

func TestProviderPasswordHashing(t *testing.T) {
	p := MakeProvider("op@streamrack.io", "secret", "US", "en")
	if len(p.Password) != 64 {
		t.Errorf("password hash %q", p.Password)
	}
	if !CheckProviderPasswordHash(p.Password, "secret") {
		t.Error("correct password rejected")
	}
	if CheckProviderPasswordHash(p.Password, "wrong") {
		t.Error("wrong password accepted")
	}
}

func TestProviderServers(t *testing.T) {
	p := MakeProvider("op@streamrack.io", "secret", "US", "en")
	srv := NewServiceSettings("srv")
	p.AddServer(srv)
	p.AddServer(srv)
	if len(p.Servers) != 1 {
		t.Errorf("servers %d, want 1", len(p.Servers))
	}
	p.RemoveServer(srv)
	if len(p.Servers) != 0 {
		t.Errorf("servers %d after removal", len(p.Servers))
	}
}
