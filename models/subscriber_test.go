package models

import (
	"strings"
	"testing"
	"time"

	"github.com/kr/pretty"
)

type fakeDeleter struct {
	deleted []string
	fail    map[string]bool
}

func (d *fakeDeleter) DeleteStream(st *Stream) error {
	if d.fail[st.ID] {
		return errTestDelete
	}
	d.deleted = append(d.deleted, st.ID)
	return nil
}

var errTestDelete = &deleteError{}

type deleteError struct{}

func (*deleteError) Error() string { return "delete failed" }

func TestPasswordHashing(t *testing.T) {
	sub := MakeSubscriber("a@b.c", "A", "B", "secret", "US", "en")
	if len(sub.Password) != 32 {
		t.Errorf("password hash %q", sub.Password)
	}
	if !CheckPasswordHash(sub.Password, "secret") {
		t.Error("correct password rejected")
	}
	if CheckPasswordHash(sub.Password, "wrong") {
		t.Error("wrong password accepted")
	}
}

func TestDeviceQuota(t *testing.T) {
	sub := MakeSubscriber("a@b.c", "A", "B", "secret", "US", "en")
	sub.MaxDevicesCount = 1
	sub.AddDevice(NewDevice("tv"))
	sub.AddDevice(NewDevice("phone"))
	if len(sub.Devices) != 1 {
		t.Errorf("devices %d, want 1", len(sub.Devices))
	}
	if sub.Devices[0].Name != "tv" {
		t.Error("overflow device replaced the original")
	}
}

func TestOfficialEntitlementsDeduplicate(t *testing.T) {
	sub := MakeSubscriber("a@b.c", "A", "B", "secret", "US", "en")
	sub.AddOfficialStream("S1")
	sub.AddOfficialStream("S1")
	if len(sub.Streams) != 1 {
		t.Errorf("streams %d, want 1", len(sub.Streams))
	}
	sub.RemoveOfficialStream("S1")
	if len(sub.Streams) != 0 {
		t.Errorf("streams %d after removal", len(sub.Streams))
	}
	// removing an absent id is a no-op
	sub.RemoveOfficialStream("S1")
}

func TestOwnEntriesForcePrivate(t *testing.T) {
	sub := MakeSubscriber("a@b.c", "A", "B", "secret", "US", "en")
	sub.AddOwnStream(UserStream{StreamID: "S1", Private: false})
	if !sub.Streams[0].Private {
		t.Error("own entry must be private")
	}
	sub.AddOwnStream(UserStream{StreamID: "S1"})
	if len(sub.Streams) != 1 {
		t.Errorf("streams %d, want 1", len(sub.Streams))
	}
}

func TestOfficialAndOwnCoexist(t *testing.T) {
	sub := MakeSubscriber("a@b.c", "A", "B", "secret", "US", "en")
	sub.AddOfficialStream("S1")
	sub.AddOwnStream(UserStream{StreamID: "S1"})
	if len(sub.Streams) != 2 {
		t.Fatalf("streams %d, want 2", len(sub.Streams))
	}
	sub.RemoveOfficialStream("S1")
	if len(sub.Streams) != 1 || !sub.Streams[0].Private {
		t.Error("removing the official entry must keep the own one")
	}
}

func TestRemoveOwnDeletesUnderlyingStream(t *testing.T) {
	sub := MakeSubscriber("a@b.c", "A", "B", "secret", "US", "en")
	sub.AddOwnStream(UserStream{StreamID: "S1"})
	del := &fakeDeleter{}
	if err := sub.RemoveOwnStream("S1", del); err != nil {
		t.Fatal(err)
	}
	if len(del.deleted) != 1 || del.deleted[0] != "S1" {
		t.Errorf("deleted %v", del.deleted)
	}
	// absent own entries delete nothing
	if err := sub.RemoveOwnStream("S2", del); err != nil {
		t.Fatal(err)
	}
	if len(del.deleted) != 1 {
		t.Errorf("deleted %v", del.deleted)
	}
}

func TestSelectAllKeepsEntryState(t *testing.T) {
	server := NewServiceSettings("srv")
	s1 := NewProxyStream()
	s1.ID = "S1"
	s2 := NewProxyStream()
	s2.ID = "S2"
	server.AddStream(s1)
	server.AddStream(s2)

	sub := MakeSubscriber("a@b.c", "A", "B", "secret", "US", "en")
	sub.AddServer(server)
	sub.AddOfficialStream("S1")
	sub.Streams[0].Favorite = true
	sub.Streams[0].Recent = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	sub.AddOwnStream(UserStream{StreamID: "MINE"})

	sub.SelectAllStreams(true)
	if len(sub.Streams) != 3 {
		t.Fatalf("streams after select all: %# v", pretty.Formatter(sub.Streams))
	}
	kept := sub.Streams.findOfficial("S1")
	if kept < 0 || !sub.Streams[kept].Favorite {
		t.Error("per-entry state lost on reselection")
	}
	if sub.Streams.findOwn("MINE") < 0 {
		t.Error("own entry dropped by select all")
	}

	sub.SelectAllStreams(false)
	if len(sub.Streams) != 1 || !sub.Streams[0].Private {
		t.Errorf("deselect kept %# v", pretty.Formatter(sub.Streams))
	}
}

func TestSelectAllSkipsHiddenAndVodKinds(t *testing.T) {
	server := NewServiceSettings("srv")
	visible := NewProxyStream()
	visible.ID = "S1"
	hidden := NewProxyStream()
	hidden.ID = "S2"
	hidden.Visible = false
	vod := NewVodProxyStream()
	vod.ID = "V1"
	server.AddStream(visible)
	server.AddStream(hidden)
	server.AddStream(vod)

	sub := MakeSubscriber("a@b.c", "A", "B", "secret", "US", "en")
	sub.AddServer(server)
	sub.SelectAllStreams(true)
	if len(sub.Streams) != 1 || sub.Streams[0].StreamID != "S1" {
		t.Errorf("live lineup %# v", pretty.Formatter(sub.Streams))
	}
	sub.SelectAllVods(true)
	if len(sub.Vods) != 1 || sub.Vods[0].StreamID != "V1" {
		t.Errorf("vod lineup %# v", pretty.Formatter(sub.Vods))
	}
}

func TestAvailableCandidatesDeduplicateAcrossServers(t *testing.T) {
	shared := NewProxyStream()
	shared.ID = "S1"
	a := NewServiceSettings("a")
	a.AddStream(shared)
	b := NewServiceSettings("b")
	b.Streams = append(b.Streams, shared)

	sub := MakeSubscriber("a@b.c", "A", "B", "secret", "US", "en")
	sub.AddServer(a)
	sub.AddServer(b)
	if got := sub.AvailableOfficialStreams(); len(got) != 1 {
		t.Errorf("candidates %d, want 1", len(got))
	}
}

func TestDropOfficialReferences(t *testing.T) {
	sub := MakeSubscriber("a@b.c", "A", "B", "secret", "US", "en")
	sub.AddOfficialStream("S1")
	sub.AddOfficialVod("S1")
	sub.AddOwnCatchup(UserStream{StreamID: "S1"})

	if !sub.DropOfficialReferences("S1") {
		t.Error("expected a change")
	}
	if len(sub.Streams) != 0 || len(sub.Vods) != 0 {
		t.Error("official references survived")
	}
	if len(sub.Catchups) != 1 {
		t.Error("own entry dropped")
	}
	if sub.DropOfficialReferences("S1") {
		t.Error("second drop must report no change")
	}
}

func TestSubscriberGeneratePlaylist(t *testing.T) {
	server := NewServiceSettings("srv")
	official := NewProxyStream()
	official.ID = "S1"
	official.Name = "News"
	official.Output = OutputURLList{{ID: 7, URI: "http://cdn/a.m3u8"}}
	own := NewProxyStream()
	own.ID = "MINE"
	own.Name = "Cam"
	own.Output = OutputURLList{{ID: 8, URI: "http://cam.local/live.m3u8"}}
	server.AddStream(official)
	server.AddStream(own)

	sub := MakeSubscriber("a@b.c", "A", "B", "secret", "US", "en")
	sub.ID = "U1"
	sub.AddServer(server)
	sub.AddOfficialStream("S1")
	sub.AddOwnStream(UserStream{StreamID: "MINE"})

	got := sub.GeneratePlaylist("D1", "lb.example.com")
	if !strings.HasPrefix(got, "#EXTM3U\n") {
		t.Error("missing header")
	}
	wantGateway := "http://lb.example.com/U1/" + sub.Password + "/D1/S1/7/a.m3u8"
	if !strings.Contains(got, wantGateway) {
		t.Errorf("gateway url missing:\n%s", got)
	}
	if !strings.Contains(got, "http://cam.local/live.m3u8") {
		t.Errorf("own stream must play directly:\n%s", got)
	}
}

func TestDeleteFake(t *testing.T) {
	sub := MakeSubscriber("a@b.c", "A", "B", "secret", "US", "en")
	sub.AddOfficialStream("S1")
	sub.AddOwnStream(UserStream{StreamID: "MINE"})
	sub.AddOwnVod(UserStream{StreamID: "MOVIE"})

	del := &fakeDeleter{}
	if err := sub.DeleteFake(del); err != nil {
		t.Fatal(err)
	}
	if sub.Status != SubscriberDeleted {
		t.Error("account not marked deleted")
	}
	if len(del.deleted) != 2 {
		t.Errorf("deleted %v", del.deleted)
	}
	if len(sub.Streams) != 1 || sub.Streams[0].Private {
		t.Error("official history must survive account deletion")
	}
}
