package payees

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Payee is a recipient the user has sent money to before.
type Payee struct {
	AccountNumber string `json:"account_number"`
	Name          string `json:"name"`
}

// Book keeps payees in a JSON file.
type Book struct {
	filePath string

	mu     sync.Mutex
	payees []Payee
}

// DefaultPath returns ~/.config/pocketbank-cli/payees.json.
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "pocketbank-cli", "payees.json"), nil
}

// Open creates the parent directory and loads the file if it exists.
func Open(filePath string) (*Book, error) {
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	b := &Book{filePath: filePath, payees: []Payee{}}
	if err := b.Load(); err != nil {
		return nil, err
	}
	return b, nil
}

// Load reads payees from disk. A missing file leaves the book empty.
func (b *Book) Load() error {
	data, err := os.ReadFile(b.filePath)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read payees file: %w", err)
	}

	var payees []Payee
	if err := json.Unmarshal(data, &payees); err != nil {
		return fmt.Errorf("failed to parse payees: %w", err)
	}

	b.mu.Lock()
	b.payees = payees
	b.mu.Unlock()
	return nil
}

func (b *Book) save() error {
	data, err := json.MarshalIndent(b.payees, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal payees: %w", err)
	}
	if err := os.WriteFile(b.filePath, data, 0600); err != nil {
		return fmt.Errorf("failed to write payees file: %w", err)
	}
	return nil
}

func (b *Book) Find(accountNumber string) (Payee, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, p := range b.payees {
		if p.AccountNumber == accountNumber {
			return p, true
		}
	}
	return Payee{}, false
}

// Add inserts p or renames an existing entry, then saves.
func (b *Book) Add(p Payee) error {
	p.AccountNumber = strings.TrimSpace(p.AccountNumber)
	p.Name = strings.TrimSpace(p.Name)
	if p.AccountNumber == "" || p.Name == "" {
		return fmt.Errorf("payee needs an account number and a name")
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.payees {
		if b.payees[i].AccountNumber == p.AccountNumber {
			if b.payees[i].Name == p.Name {
				return nil
			}
			b.payees[i] = p
			return b.save()
		}
	}
	b.payees = append(b.payees, p)
	return b.save()
}

// List returns the payees sorted by name.
func (b *Book) List() []Payee {
	b.mu.Lock()
	out := append([]Payee(nil), b.payees...)
	b.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
