// Copyright 2025 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package server implements an HTTP service decoding keyed QR codes
// from uploaded images.
package server

import (
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	pkgerrors "github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/unixdj/secqr"
)

// Messages returned for uploads that yield no text.
const (
	MsgUploadUnreadable = "QR code cannot be scanned!"
	MsgImageUnreadable  = "QR Image cannot be scanned!"
)

// response is the JSON body of every reply.
type response struct {
	Message string `json:"message"`
}

// Server accepts image uploads and replies with the text of the keyed
// QR code in them.
type Server struct {
	config        *Config
	logger        *log.Logger
	decoder       *secqr.Decoder
	limiter       *rateLimiter
	listener      net.Listener
	http          *http.Server
	shutdownCh    chan struct{}
	mu            sync.RWMutex
	shutdown      bool
	running       bool
	goroutineWait sync.WaitGroup
}

// New returns a Server for config.
func New(config *Config) *Server {
	logger := NewLogger(config.LogLevel)
	if config.LogSilent {
		logger.Out = io.Discard
	}
	s := &Server{
		config:     config,
		logger:     logger,
		decoder:    &secqr.Decoder{Log: logger},
		shutdownCh: make(chan struct{}),
	}
	if config.Upload.Rate > 0 {
		s.limiter = newRateLimiter(rate.Limit(config.Upload.Rate), config.Upload.Burst)
	}
	return s
}

// Logger returns the logger of s.
func (s *Server) Logger() *log.Logger { return s.logger }

// Handler returns the HTTP handler serving POST /upload.
func (s *Server) Handler() http.Handler {
	var upload http.Handler = http.HandlerFunc(s.handleUpload)
	if s.limiter != nil {
		upload = rateLimitMiddleware(s.limiter)(upload)
	}
	mux := http.NewServeMux()
	mux.Handle("POST /upload", upload)
	return mux
}

// Start starts listening and serving uploads in the background.
func (s *Server) Start() error {
	if s.config.Key == nil {
		return errors.New("no key configured")
	}
	if err := s.config.Upload.Validate(); err != nil {
		return err
	}
	l, err := net.Listen("tcp", s.config.Listen.String())
	if err != nil {
		return pkgerrors.Wrap(err, "failed starting listener")
	}
	s.listener = l
	s.http = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.logger.Infof("Starting server on %s...", l.Addr())
	s.logger.Infof("Maximum upload size: %s, %s pixels",
		humanize.IBytes(uint64(s.config.Upload.MaxBytes)),
		humanize.Comma(s.config.Upload.MaxPixels))
	if s.limiter != nil {
		s.logger.Infof("Upload rate limit: %v/s, burst %d", s.config.Upload.Rate, s.config.Upload.Burst)
		s.startGoroutine(func() {
			s.limiter.runCleanup(s.shutdownCh, limiterCleanupInterval, limiterStaleAfter)
		})
	}

	if s.config.HandleSignals {
		s.handleSignals()
	}

	s.mu.Lock()
	s.running = true
	s.mu.Unlock()
	s.startGoroutine(func() {
		err := s.http.Serve(l)
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
		if err != nil && err != http.ErrServerClosed {
			select {
			case <-s.shutdownCh:
			default:
				s.logger.Error(err)
			}
		}
	})
	return nil
}

// Addr returns the address s listens on, or nil if not started.
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Stop shuts s down and waits for its goroutines to exit.
func (s *Server) Stop() error {
	s.mu.Lock()
	if s.shutdown {
		s.mu.Unlock()
		return nil
	}
	s.logger.Info("Shutting down...")

	close(s.shutdownCh)
	var err error
	if s.http != nil {
		err = s.http.Close()
	}
	s.running = false
	s.shutdown = true
	s.mu.Unlock()

	s.goroutineWait.Wait()
	return err
}

func (s *Server) isRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

func (s *Server) startGoroutine(f func()) {
	select {
	case <-s.shutdownCh:
		return
	default:
	}
	s.goroutineWait.Add(1)
	go func() {
		f()
		s.goroutineWait.Done()
	}()
}

func (s *Server) reply(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response{Message: msg}); err != nil {
		s.logger.Warnf("Failed to write response: %v", err)
	}
}

// handleUpload decodes the image in the multipart field "file".  The
// reply is always 200 with the decoded text or a fixed message.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.config.Upload.MaxBytes)
	logger := s.logger.WithField("remote", r.RemoteAddr)

	file, hdr, err := r.FormFile("file")
	if err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			logger.Warnf("Upload exceeds %s", humanize.IBytes(uint64(mbe.Limit)))
		} else {
			logger.Warnf("Invalid upload: %v", err)
		}
		s.reply(w, MsgUploadUnreadable)
		return
	}
	defer file.Close()
	logger = logger.WithFields(log.Fields{
		"file": hdr.Filename,
		"size": humanize.IBytes(uint64(hdr.Size)),
	})

	m, err := secqr.DecodeImageLimit(file, s.config.Upload.MaxPixels)
	if err != nil {
		switch {
		case errors.Is(err, secqr.ErrNotFound):
			logger.Info("No code found")
			s.reply(w, MsgImageUnreadable)
			return
		case errors.Is(err, secqr.ErrImageTooLarge):
			logger.Warnf("Image exceeds %s pixels", humanize.Comma(s.config.Upload.MaxPixels))
			s.reply(w, MsgUploadUnreadable)
			return
		}
		logger.Warnf("Unreadable image: %v", err)
		s.reply(w, MsgUploadUnreadable)
		return
	}

	res, err := s.decoder.Decode(m, s.config.Key)
	if err != nil {
		var fe secqr.FormatError
		var ce secqr.ChecksumError
		if errors.As(err, &fe) || errors.As(err, &ce) {
			logger.Infof("Code unreadable: %v", err)
			s.reply(w, MsgImageUnreadable)
			return
		}
		logger.Warnf("Decode failed: %v", err)
		s.reply(w, MsgUploadUnreadable)
		return
	}
	logger.WithFields(log.Fields{
		"version":  res.Version,
		"level":    res.Level,
		"mirrored": res.Mirrored,
	}).Debug("Decoded code")
	s.reply(w, res.Text)
}
