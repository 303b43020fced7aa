// Package server serves the catalog dashboard over HTTP. It holds one loaded
// dataset at a time; every upload replaces it.
package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/KaramelBytes/specimen-cli/internal/cache"
	"github.com/KaramelBytes/specimen-cli/internal/parser"
	"github.com/KaramelBytes/specimen-cli/internal/processor"
	"github.com/KaramelBytes/specimen-cli/internal/report"
	"github.com/KaramelBytes/specimen-cli/internal/specimen"
	"github.com/KaramelBytes/specimen-cli/internal/utils"
)

// DefaultMaxUpload bounds the size of an uploaded file.
const DefaultMaxUpload = 32 << 20

// Options configures a Server.
type Options struct {
	Processor *processor.Processor
	Parser    parser.Options
	// Cache, when set, keeps the last loaded dataset across restarts.
	Cache    *cache.Store
	CacheTTL time.Duration
	// UploadDir, when set, keeps a copy of every uploaded file.
	UploadDir      string
	MaxUploadBytes int64
	Logger         *zap.Logger
}

// Snapshot is one loaded dataset and its statistics. It is never modified
// after it is published.
type Snapshot struct {
	ID       string
	Name     string
	LoadedAt time.Time
	Data     *specimen.Dataset
	Summary  report.Summary
}

// cachedDataset is the cache representation of a Snapshot.
type cachedDataset struct {
	ID       string            `json:"id"`
	Name     string            `json:"name"`
	LoadedAt time.Time         `json:"loadedAt"`
	Data     *specimen.Dataset `json:"data"`
}

// Server owns the current snapshot and the HTTP handlers.
type Server struct {
	proc      *processor.Processor
	parseOpt  parser.Options
	cache     *cache.Store
	cacheTTL  time.Duration
	uploadDir string
	maxUpload int64
	log       *zap.Logger

	mu   sync.RWMutex
	snap *Snapshot
}

// New builds a Server from opt.
func New(opt Options) *Server {
	s := &Server{
		proc:      opt.Processor,
		parseOpt:  opt.Parser,
		cache:     opt.Cache,
		cacheTTL:  opt.CacheTTL,
		uploadDir: opt.UploadDir,
		maxUpload: opt.MaxUploadBytes,
		log:       opt.Logger,
	}
	if s.proc == nil {
		s.proc = processor.New(processor.DefaultOptions())
	}
	if s.cacheTTL <= 0 {
		s.cacheTTL = 24 * time.Hour
	}
	if s.maxUpload <= 0 {
		s.maxUpload = DefaultMaxUpload
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	return s
}

// Current returns the loaded snapshot, or nil.
func (s *Server) Current() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// Load validates and normalizes ds, publishes it as the current snapshot
// and writes it to the cache.
func (s *Server) Load(name string, ds *specimen.Dataset) (*Snapshot, error) {
	return s.load(uuid.NewString(), name, ds)
}

func (s *Server) load(id, name string, ds *specimen.Dataset) (*Snapshot, error) {
	if err := processor.ValidateColumns(ds); err != nil {
		return nil, err
	}
	snap, err := s.build(id, name, time.Now().UTC(), ds)
	if err != nil {
		return nil, err
	}
	s.publish(snap)
	s.store(snap)
	return snap, nil
}

// LoadFile reads a catalog from disk and loads it.
func (s *Server) LoadFile(path string) (*Snapshot, error) {
	ds, err := parser.ReadFile(path, s.parseOpt)
	if err != nil {
		return nil, err
	}
	return s.Load(filepath.Base(path), ds)
}

// Restore loads the cached dataset, if a live one exists. It reports whether
// a snapshot was restored.
func (s *Server) Restore() (bool, error) {
	if s.cache == nil {
		return false, nil
	}
	var c cachedDataset
	if _, err := s.cache.Get(cache.KeyDataset, &c); err != nil {
		if errors.Is(err, cache.ErrNotFound) || errors.Is(err, cache.ErrExpired) {
			return false, nil
		}
		return false, err
	}
	if c.Data == nil {
		return false, nil
	}
	snap, err := s.build(c.ID, c.Name, c.LoadedAt, c.Data)
	if err != nil {
		return false, err
	}
	s.publish(snap)
	s.log.Info("restored cached dataset", zap.String("name", c.Name), zap.Int("rows", c.Data.Len()))
	return true, nil
}

func (s *Server) build(id, name string, at time.Time, ds *specimen.Dataset) (*Snapshot, error) {
	norm, err := s.proc.Process(ds)
	if err != nil {
		return nil, err
	}
	return &Snapshot{
		ID:       id,
		Name:     name,
		LoadedAt: at,
		Data:     norm,
		Summary: report.Summary{
			Name:     name,
			Overview: s.proc.Overview(norm),
			Bundle:   s.proc.Summarize(norm),
		},
	}, nil
}

func (s *Server) publish(snap *Snapshot) {
	s.mu.Lock()
	s.snap = snap
	s.mu.Unlock()
	s.log.Info("dataset loaded",
		zap.String("id", snap.ID),
		zap.String("name", snap.Name),
		zap.Int("rows", snap.Data.Len()))
}

// store writes snap to the cache. Failures are logged; the dataset stays loaded.
func (s *Server) store(snap *Snapshot) {
	if s.cache == nil {
		return
	}
	c := cachedDataset{ID: snap.ID, Name: snap.Name, LoadedAt: snap.LoadedAt, Data: snap.Data}
	if err := s.cache.Put(cache.KeyDataset, c, s.cacheTTL); err != nil {
		s.log.Warn("cache dataset", zap.Error(err))
		return
	}
	if err := s.cache.Put(cache.KeyLastUpdate, snap.LoadedAt, s.cacheTTL); err != nil {
		s.log.Warn("cache last update", zap.Error(err))
	}
}

// keepUpload saves a copy of an uploaded file under uploadDir/<id>/.
func (s *Server) keepUpload(id, name string, data []byte) {
	if s.uploadDir == "" {
		return
	}
	dir := filepath.Join(s.uploadDir, id)
	if err := utils.EnsureDir(dir); err != nil {
		s.log.Warn("create upload dir", zap.Error(err))
		return
	}
	if err := utils.SafeWriteFile(filepath.Join(dir, filepath.Base(name)), data); err != nil {
		s.log.Warn("save upload", zap.Error(err))
	}
}

// ListenAndServe serves Routes on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		s.log.Info("listening", zap.String("addr", addr))
		errc <- srv.ListenAndServe()
	}()
	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
}

func parseUpload(name string, data []byte, opt parser.Options) (*specimen.Dataset, error) {
	return parser.Read(name, bytes.NewReader(data), opt)
}
