// Package inventory implements the player's item ledger: named stacks of
// goods plus a cash balance, mutated only through validated operations.
package inventory

import (
	"fmt"
	"strings"
	"sync"
)

// Item is a named stack of goods in the player's pack.
type Item struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Count       int    `json:"count"`
}

// Snapshot is an immutable view of the ledger, safe to hand to callers.
type Snapshot struct {
	Items []Item `json:"items"`
	Cash  int    `json:"cash"`
}

// RemoveStatus reports the outcome of a RemoveItem call. Legitimate
// game-state refusals are statuses, never errors.
type RemoveStatus int

const (
	RemoveOK RemoveStatus = iota
	RemoveNotFound
	RemoveInsufficient
)

// CashStatus reports the outcome of a RemoveCash call.
type CashStatus int

const (
	CashOK CashStatus = iota
	CashInsufficient
)

// Ledger holds the running game's items and cash. Items are kept in
// insertion order and item names are unique. All counts are strictly
// positive; a stack that reaches zero is deleted.
type Ledger struct {
	mu    sync.RWMutex
	items []Item
	cash  int
}

func NewLedger() *Ledger {
	return &Ledger{items: make([]Item, 0)}
}

// AddItem inserts a new stack or increments an existing one. The
// description of an existing stack is left unchanged.
func (l *Ledger) AddItem(name, description string, count int) error {
	if name == "" {
		return fmt.Errorf("%w: item name cannot be empty", ErrValidation)
	}
	if description == "" {
		return fmt.Errorf("%w: item description cannot be empty", ErrValidation)
	}
	if count <= 0 {
		return fmt.Errorf("%w: item count must be a positive integer, got %d", ErrValidation, count)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	for i := range l.items {
		if l.items[i].Name == name {
			l.items[i].Count += count
			return nil
		}
	}
	l.items = append(l.items, Item{Name: name, Description: description, Count: count})
	return nil
}

// RemoveItem decrements a stack by count. A missing item or an
// insufficient count leaves the ledger unchanged and is reported via the
// status, not an error. The returned int is the count available at the
// time of the call (zero when the item is absent).
func (l *Ledger) RemoveItem(name string, count int) (RemoveStatus, int, error) {
	if count <= 0 {
		return RemoveOK, 0, fmt.Errorf("%w: remove count must be a positive integer, got %d", ErrValidation, count)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	for i := range l.items {
		if l.items[i].Name != name {
			continue
		}
		if l.items[i].Count < count {
			return RemoveInsufficient, l.items[i].Count, nil
		}
		l.items[i].Count -= count
		remaining := l.items[i].Count
		if remaining == 0 {
			l.items = append(l.items[:i], l.items[i+1:]...)
		}
		return RemoveOK, remaining, nil
	}
	return RemoveNotFound, 0, nil
}

// SetCash overwrites the cash balance.
func (l *Ledger) SetCash(value int) error {
	if value < 0 {
		return fmt.Errorf("%w: cash value cannot be negative, got %d", ErrValidation, value)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cash = value
	return nil
}

// AddCash increases the balance and returns the new balance.
func (l *Ledger) AddCash(amount int) (int, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("%w: amount to add must be a positive integer, got %d", ErrValidation, amount)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cash += amount
	return l.cash, nil
}

// RemoveCash decreases the balance. Insufficient funds leave the balance
// unchanged and are reported via the status. The returned int is the
// balance after the call.
func (l *Ledger) RemoveCash(amount int) (CashStatus, int, error) {
	if amount <= 0 {
		return CashOK, 0, fmt.Errorf("%w: amount to remove must be a positive integer, got %d", ErrValidation, amount)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cash < amount {
		return CashInsufficient, l.cash, nil
	}
	l.cash -= amount
	return CashOK, l.cash, nil
}

func (l *Ledger) CashBalance() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.cash
}

// List returns a copy of the current items and cash.
func (l *Ledger) List() Snapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()
	items := make([]Item, len(l.items))
	copy(items, l.items)
	return Snapshot{Items: items, Cash: l.cash}
}

// Clear empties the items. Cash is untouched; use Reset for a new game.
func (l *Ledger) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.items = l.items[:0]
}

// Reset empties the items and zeroes the cash balance.
func (l *Ledger) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.items = l.items[:0]
	l.cash = 0
}

// Summary renders the ledger as a single line for narrative context,
// e.g. "Gas: 45, Coffee: 2 and $100 in cash".
func (l *Ledger) Summary() string {
	snap := l.List()
	if len(snap.Items) == 0 {
		return fmt.Sprintf("no items and $%d in cash", snap.Cash)
	}
	parts := make([]string, 0, len(snap.Items))
	for _, item := range snap.Items {
		parts = append(parts, fmt.Sprintf("%s: %d", item.Name, item.Count))
	}
	return fmt.Sprintf("%s and $%d in cash", strings.Join(parts, ", "), snap.Cash)
}
