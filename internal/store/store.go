package store

import (
	"context"
	"encoding/json"

	"dashgate/internal/model"
)

// Storage keys. Each session field is persisted independently so a corrupt
// entry for one key never blocks the others from loading.
const (
	KeyToken          = "token"
	KeyUser           = "user"
	KeyCurrentCompany = "currentCompany"
	KeyCompanies      = "companies"
)

var sessionKeys = []string{KeyToken, KeyUser, KeyCurrentCompany, KeyCompanies}

// Backend is a keyed byte store scoped by session id. Get returns (nil, nil)
// for an absent key.
type Backend interface {
	Get(ctx context.Context, sid, key string) ([]byte, error)
	Set(ctx context.Context, sid, key string, value []byte) error
	Delete(ctx context.Context, sid string, keys ...string) error
}

// Store reads and writes persisted session state. Malformed values decode to
// absence: state restore fails open to an empty field, never to an error the
// caller has to handle.
type Store struct {
	backend Backend
}

func New(backend Backend) *Store {
	return &Store{backend: backend}
}

// Load reconstructs a session from storage. Only backend transport failures
// are returned as errors; corrupt or missing entries yield empty fields.
func (s *Store) Load(ctx context.Context, sid string) (*model.Session, error) {
	sess := &model.Session{}

	raw, err := s.backend.Get(ctx, sid, KeyToken)
	if err != nil {
		return nil, err
	}
	sess.Token = string(raw)

	raw, err = s.backend.Get(ctx, sid, KeyUser)
	if err != nil {
		return nil, err
	}
	if u := decodeUser(raw); u != nil {
		sess.User = u
	}

	raw, err = s.backend.Get(ctx, sid, KeyCurrentCompany)
	if err != nil {
		return nil, err
	}
	if m := decodeMembership(raw); m != nil {
		sess.CurrentCompany = m
	}

	raw, err = s.backend.Get(ctx, sid, KeyCompanies)
	if err != nil {
		return nil, err
	}
	sess.Companies = decodeMemberships(raw)

	return sess, nil
}

// Persist writes each session field under its own key. Absent fields delete
// their key so stale state cannot resurrect on the next load. Writes are not
// atomic across keys; the first error is reported after all keys were tried.
func (s *Store) Persist(ctx context.Context, sid string, sess *model.Session) error {
	var firstErr error
	keep := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	if sess == nil {
		return s.Clear(ctx, sid)
	}

	if sess.Token != "" {
		keep(s.backend.Set(ctx, sid, KeyToken, []byte(sess.Token)))
	} else {
		keep(s.backend.Delete(ctx, sid, KeyToken))
	}

	if sess.User != nil {
		keep(s.setJSON(ctx, sid, KeyUser, sess.User))
	} else {
		keep(s.backend.Delete(ctx, sid, KeyUser))
	}

	if sess.CurrentCompany != nil {
		keep(s.setJSON(ctx, sid, KeyCurrentCompany, sess.CurrentCompany))
	} else {
		keep(s.backend.Delete(ctx, sid, KeyCurrentCompany))
	}

	if len(sess.Companies) > 0 {
		keep(s.setJSON(ctx, sid, KeyCompanies, sess.Companies))
	} else {
		keep(s.backend.Delete(ctx, sid, KeyCompanies))
	}

	return firstErr
}

// Clear removes every persisted field of the session.
func (s *Store) Clear(ctx context.Context, sid string) error {
	return s.backend.Delete(ctx, sid, sessionKeys...)
}

func (s *Store) setJSON(ctx context.Context, sid, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.backend.Set(ctx, sid, key, data)
}

// decodeUser treats malformed JSON and shape mismatches (no user id) as
// absence.
func decodeUser(raw []byte) *model.User {
	if len(raw) == 0 {
		return nil
	}
	var u model.User
	if err := json.Unmarshal(raw, &u); err != nil {
		return nil
	}
	if u.ID == "" {
		return nil
	}
	return &u
}

func decodeMembership(raw []byte) *model.CompanyMembership {
	if len(raw) == 0 {
		return nil
	}
	var m model.CompanyMembership
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil
	}
	if m.Company.ID == "" {
		return nil
	}
	return &m
}

func decodeMemberships(raw []byte) []model.CompanyMembership {
	if len(raw) == 0 {
		return nil
	}
	var list []model.CompanyMembership
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil
	}
	out := list[:0]
	for _, m := range list {
		if m.Company.ID != "" {
			out = append(out, m)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
