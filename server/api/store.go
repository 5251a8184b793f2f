package main

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"
)

var errAlreadyOnboarded = errors.New("ALREADY_ONBOARDED")

type OnboardedAccount struct {
	Account         string `json:"account"`
	PublicKey       string `json:"public_key"`
	EthereumAccount string `json:"ethereum_account"`
	Created         int64  `json:"created_at"`
}

type storeData struct {
	Accounts []OnboardedAccount `json:"accounts"`
}

// Store is a JSON file of onboarded accounts. An empty path keeps everything
// in memory.
type Store struct {
	mu   sync.Mutex
	path string
	data storeData
}

func loadStore(path string) (*Store, error) {
	store := &Store{
		path: path,
		data: storeData{},
	}
	if path == "" {
		return store, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return store, nil
		}
		return nil, err
	}
	if len(raw) == 0 {
		return store, nil
	}
	if err := json.Unmarshal(raw, &store.data); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *Store) saveLocked() error {
	if s.path == "" {
		return nil
	}
	raw, err := json.Marshal(s.data)
	if err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

// addAccount records an onboarded account. Addresses must already be in
// canonical felt hex form.
func (s *Store) addAccount(acct OnboardedAccount) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.data.Accounts {
		if a.Account == acct.Account {
			return errAlreadyOnboarded
		}
	}
	if acct.Created == 0 {
		acct.Created = time.Now().Unix()
	}
	s.data.Accounts = append(s.data.Accounts, acct)
	return s.saveLocked()
}

func (s *Store) account(address string) (*OnboardedAccount, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.data.Accounts {
		if a.Account == address {
			cp := a
			return &cp, true
		}
	}
	return nil, false
}
