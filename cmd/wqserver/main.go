// Command wqserver runs the WordQuizzle match server: the reactor, the
// Mailman, the bounded worker pool, the registration RPC endpoint, and the
// UDP discovery responder, grounded on the teacher's main.go wiring but
// rebuilt around WordQuizzle's components instead of the WebSocket
// signaling stack.
package main

import (
	"net"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/frjnn/wordquizzle/internal/config"
	"github.com/frjnn/wordquizzle/internal/match"
	"github.com/frjnn/wordquizzle/internal/presence"
	"github.com/frjnn/wordquizzle/internal/rpcserver"
	"github.com/frjnn/wordquizzle/internal/server"
	"github.com/frjnn/wordquizzle/internal/store"
	"github.com/frjnn/wordquizzle/internal/wqnet"
	"github.com/frjnn/wordquizzle/internal/words"
)

const registrationAddr = ":5678"

func main() {
	log := logrus.StandardLogger()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Parse(os.Args[1:])
	if err != nil {
		log.WithError(err).Error("invalid arguments")
		os.Exit(1)
	}

	userStore, err := store.Open(cfg.DatabasePath, log)
	if err != nil {
		log.WithError(err).Fatal("failed to open user database")
	}

	stats := server.NewStats()
	userStore.OnSnapshotError(func(error) { stats.SnapshotFailed() })

	dictionary, err := words.LoadDictionary(cfg.DictionaryPath)
	if err != nil {
		log.WithError(err).Fatal("failed to load dictionary")
	}
	if dictionary.Size() < cfg.NumWords {
		log.Fatalf("dictionary has only %d words, need %d per match", dictionary.Size(), cfg.NumWords)
	}

	translator := words.NewMyMemoryTranslator("it", "en", 10*time.Second)
	presenceTable := presence.New()

	epoll, err := wqnet.NewEpoll()
	if err != nil {
		log.WithError(err).Fatal("failed to create epoll instance")
	}
	defer epoll.Close()

	tcpListener, err := net.ListenTCP("tcp", &net.TCPAddr{Port: cfg.TCPPort})
	if err != nil {
		log.WithError(err).Fatal("failed to bind TCP listener")
	}
	defer tcpListener.Close()

	udpConn, err := net.ListenUDP("udp", &net.UDPAddr{Port: cfg.UDPPort})
	if err != nil {
		log.WithError(err).Fatal("failed to bind UDP discovery socket")
	}
	defer udpConn.Close()

	depot := server.NewDepot(1024)
	sessions := server.NewSessionRegistry()

	ctx := &server.Context{
		Store:      userStore,
		Presence:   presenceTable,
		Depot:      depot,
		Epoll:      epoll,
		Sessions:   sessions,
		Dictionary: dictionary,
		Translator: translator,
		MatchConfig: match.Config{
			MatchDuration:  cfg.MatchDuration,
			AcceptDuration: cfg.AcceptDuration,
			NumWords:       cfg.NumWords,
		},
		Stats: stats,
		Log:   log,
	}

	mailman := server.NewMailman(depot, epoll, sessions, log)
	go mailman.Run()

	go server.ServeDiscovery(udpConn, cfg.TCPPort, log)

	registration := rpcserver.NewRegistration(userStore, log)
	go func() {
		if err := rpcserver.Serve(registrationAddr, registration); err != nil {
			log.WithError(err).Error("registration RPC server stopped")
		}
	}()

	go server.StatusPrinter(log, presenceTable, epoll, sessions, stats, time.Now())

	log.WithFields(logrus.Fields{
		"tcpPort": cfg.TCPPort,
		"udpPort": cfg.UDPPort,
	}).Info("wqserver listening")

	reactor := server.NewReactor(tcpListener, epoll, ctx, cfg.WorkerThreads)
	reactor.Run()
}
