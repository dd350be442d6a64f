package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/dtroode/inkdesk/internal/model"
)

var _ model.Tier = (*Tier)(nil)

// Tier is a persistent tier stored as a JSON document on disk. The document
// maps namespace to key/value pairs so several tiers can share one file.
type Tier struct {
	mu        sync.Mutex
	path      string
	namespace string
}

func NewTier(path, namespace string) *Tier {
	return &Tier{path: path, namespace: namespace}
}

func (t *Tier) Name() string {
	return "file:" + t.namespace
}

func (t *Tier) Get(_ context.Context, key string) (string, bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	doc, err := t.read()
	if err != nil {
		return "", false, err
	}
	v, ok := doc[t.namespace][key]
	return v, ok, nil
}

func (t *Tier) SetAll(_ context.Context, values map[string]string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	doc, err := t.read()
	if err != nil {
		return err
	}
	ns := doc[t.namespace]
	if ns == nil {
		ns = make(map[string]string, len(values))
		doc[t.namespace] = ns
	}
	for k, v := range values {
		ns[k] = v
	}
	return t.write(doc)
}

func (t *Tier) Delete(_ context.Context, keys ...string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	doc, err := t.read()
	if err != nil {
		return err
	}
	ns, ok := doc[t.namespace]
	if !ok {
		return nil
	}
	for _, k := range keys {
		delete(ns, k)
	}
	if len(ns) == 0 {
		delete(doc, t.namespace)
	}
	return t.write(doc)
}

func (t *Tier) read() (map[string]map[string]string, error) {
	doc := make(map[string]map[string]string)

	data, err := os.ReadFile(t.path)
	if errors.Is(err, fs.ErrNotExist) {
		return doc, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read credentials: %w", err)
	}
	if len(data) == 0 {
		return doc, nil
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse credentials: %w", err)
	}
	return doc, nil
}

// write replaces the file atomically so readers never see half a document.
func (t *Tier) write(doc map[string]map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(t.path), 0700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal credentials: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(t.path), ".credentials-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write credentials: %w", err)
	}
	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod credentials: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close credentials: %w", err)
	}
	if err := os.Rename(tmp.Name(), t.path); err != nil {
		return fmt.Errorf("replace credentials: %w", err)
	}
	return nil
}
