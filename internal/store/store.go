// Package store persists composition output. Each run is saved as a small
// set of named artifacts under its run id.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"time"

	"slide-composer/internal/common/config"
	"slide-composer/internal/common/database"
	"slide-composer/internal/composer/engine"
)

var ErrNotFound = errors.New("artifact not found")

// Artifact names within a run.
const (
	ArtifactMarkup = "markup"
	ArtifactDeck   = "deck"
	ArtifactResult = "result"
)

const (
	ContentTypeHTML = "text/html; charset=utf-8"
	ContentTypeJSON = "application/json"
)

var keyRe = regexp.MustCompile(`^[A-Za-z0-9_-]+/[a-z]+$`)

type Artifact struct {
	Key         string
	ContentType string
	Data        []byte
	CreatedAt   time.Time
}

// Sink is the persistence collaborator.
type Sink interface {
	Save(ctx context.Context, key, contentType string, data []byte) error
	Load(ctx context.Context, key string) (*Artifact, error)
}

// Key names an artifact of a run.
func Key(runID, artifact string) string {
	return runID + "/" + artifact
}

func validateKey(key string) error {
	if !keyRe.MatchString(key) {
		return fmt.Errorf("invalid artifact key %q", key)
	}
	return nil
}

// New builds the sink selected by store.kind.
func New(cfg config.StoreConfig, redisCfg config.RedisConfig) (Sink, error) {
	switch cfg.Kind {
	case "", "file":
		return NewFileSink(cfg.OutputDir), nil
	case "redis":
		client, err := database.NewRedis(redisCfg)
		if err != nil {
			return nil, err
		}
		return NewRedisSink(client, cfg.KeyPrefix, time.Duration(cfg.TTL)*time.Second), nil
	default:
		return nil, fmt.Errorf("unknown store kind %q", cfg.Kind)
	}
}

// Persist saves the artifacts a run produced and returns their keys. The
// run summary is always written; markup and deck only when present.
func Persist(ctx context.Context, sink Sink, res *engine.Result) ([]string, error) {
	runID := res.RunID.String()
	var keys []string

	save := func(name, contentType string, data []byte) error {
		key := Key(runID, name)
		if err := sink.Save(ctx, key, contentType, data); err != nil {
			return err
		}
		keys = append(keys, key)
		return nil
	}

	if res.Markup != "" {
		if err := save(ArtifactMarkup, ContentTypeHTML, []byte(res.Markup)); err != nil {
			return keys, err
		}
	}
	if res.Deck != nil {
		data, err := json.Marshal(res.Deck)
		if err != nil {
			return keys, fmt.Errorf("encode deck: %w", err)
		}
		if err := save(ArtifactDeck, ContentTypeJSON, data); err != nil {
			return keys, err
		}
	}

	summary, err := json.Marshal(res)
	if err != nil {
		return keys, fmt.Errorf("encode result: %w", err)
	}
	if err := save(ArtifactResult, ContentTypeJSON, summary); err != nil {
		return keys, err
	}
	return keys, nil
}
