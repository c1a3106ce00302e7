package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/MeloQi/service"
	"github.com/StreamRack/StreamRack/log"
	"github.com/StreamRack/StreamRack/models"
	"github.com/StreamRack/StreamRack/routers"
	"github.com/StreamRack/StreamRack/utils"
	"github.com/common-nighthawk/go-figure"
	"github.com/spf13/viper"
)

var (
	gitCommitCode string
	buildDateTime string
)

type program struct {
	httpPort   int
	httpServer *http.Server
}

func (p *program) StopHTTP() (err error) {
	if p.httpServer == nil {
		err = fmt.Errorf("HTTP Server Not Found")
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err = p.httpServer.Shutdown(ctx); err != nil {
		return
	}
	return
}

func (p *program) StartHTTP() (err error) {
	p.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", p.httpPort),
		Handler:           routers.Router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	host, err := utils.ExternalIP()
	if err != nil {
		host = "localhost"
	}
	link := fmt.Sprintf("http://%s:%d", host, p.httpPort)
	log.Info("http server start -->", link)
	go func() {
		if err := p.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("start http server error: ", err)
		}
		log.Info("http server end")
	}()
	return
}

func isPortInUse(port int) bool {
	conn, err := net.DialTimeout("tcp", fmt.Sprintf("localhost:%d", port), time.Second)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

func (p *program) Start(s service.Service) (err error) {
	log.Info("********** START **********")
	if isPortInUse(p.httpPort) {
		err = fmt.Errorf("HTTP port[%d] In Use", p.httpPort)
		return
	}
	err = models.Init()
	if err != nil {
		return
	}
	err = routers.Init()
	if err != nil {
		return
	}
	p.StartHTTP()

	if viper.GetString("log.file") != "" {
		log.Info("log file -->", viper.GetString("log.file"))
		log.SetOutput(log.GetLogWriter())
	}
	go func() {
		for range routers.API.RestartChan {
			p.StopHTTP()
			if err := viper.ReadInConfig(); err != nil {
				log.Error("reload config err: ", err)
			}
			p.StartHTTP()
		}
	}()
	return
}

func (p *program) Stop(s service.Service) (err error) {
	defer log.Info("********** STOP **********")
	p.StopHTTP()
	models.Close()
	return
}

func loadConfig(path string) {
	viper.SetConfigName("streamrack")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME/.streamrack")
	if path != "" {
		viper.SetConfigFile(path)
	}
	viper.SetEnvPrefix("streamrack")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	if err := viper.ReadInConfig(); err != nil {
		log.Warn("no config file loaded: ", err)
	}
}

func main() {
	var confFile string
	flag.StringVar(&confFile, "config", "", "configure file path")
	flag.Parse()
	tail := flag.Args()

	loadConfig(confFile)
	log.SetLevel(viper.GetString("log.level"))

	log.Info("git commit code: ", gitCommitCode)
	log.Info("build date: ", buildDateTime)
	routers.BuildVersion = fmt.Sprintf("%s.%s", routers.BuildVersion, gitCommitCode)
	routers.BuildDateTime = buildDateTime

	svcConfig := &service.Config{
		Name:        viper.GetString("service.name"),
		DisplayName: viper.GetString("service.display_name"),
		Description: viper.GetString("service.description"),
	}
	if svcConfig.Name == "" {
		svcConfig.Name = "StreamRack_Service"
	}
	if svcConfig.DisplayName == "" {
		svcConfig.DisplayName = svcConfig.Name
	}
	if svcConfig.Description == "" {
		svcConfig.Description = svcConfig.Name
	}

	httpPort := viper.GetInt("http.port")
	if httpPort == 0 {
		httpPort = 10008
	}
	p := &program{
		httpPort: httpPort,
	}
	s, err := service.New(p, svcConfig)
	if err != nil {
		log.Fatal(err)
	}
	if len(tail) > 0 {
		cmd := strings.ToLower(tail[0])
		if cmd == "install" || cmd == "stop" || cmd == "start" || cmd == "uninstall" {
			figure.NewFigure("StreamRack", "", false).Print()
			log.Info(svcConfig.Name, " ", cmd, "...")
			if err = service.Control(s, cmd); err != nil {
				log.Fatal(err)
			}
			log.Info(svcConfig.Name, " ", cmd, " ok")
			return
		}
	}
	figure.NewFigure("StreamRack", "", false).Print()
	if err = s.Run(); err != nil {
		log.Fatal(err)
	}
}
