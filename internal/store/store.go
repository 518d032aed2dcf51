// Package store holds the application state behind a single mutation surface.
// Every mutation is serialized and replaces the aggregate wholesale, so
// observers can never see a half-applied transition.
package store

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/alpinex/alpinex/internal/domain"
)

var (
	// ErrUnknownAsset the source ledger has no asset with the requested symbol.
	ErrUnknownAsset = errors.New("unknown asset in source wallet")
	// ErrInsufficientBalance the source asset holds less than the requested amount.
	ErrInsufficientBalance = errors.New("insufficient balance")
	// ErrNonPositiveAmount the requested amount is zero or negative.
	ErrNonPositiveAmount = errors.New("amount must be positive")
	// ErrOrderNotFound no order matches the requested id.
	ErrOrderNotFound = errors.New("order not found")
	// ErrOrderFinal the order is in a terminal status and cannot change anymore.
	ErrOrderFinal = errors.New("order already in terminal status")
	// ErrInvalidOrder the order fails structural validation.
	ErrInvalidOrder = errors.New("invalid order")
)

// Store is the single source of truth for the exchange session.
// It is handed explicitly to every component that needs it.
type Store struct {
	mu     sync.RWMutex
	state  State
	logger *zap.Logger

	subMu   sync.Mutex
	subs    map[int]chan State
	nextSub int
}

// New creates a store owning the given initial state.
func New(logger *zap.Logger, initial State) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		state:  initial.Clone(),
		logger: logger,
		subs:   make(map[int]chan State),
	}
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// Subscribe returns a channel receiving a state snapshot after every mutation.
// Slow consumers miss intermediate snapshots instead of blocking mutators.
// The subscription is torn down when ctx is cancelled.
func (s *Store) Subscribe(ctx context.Context) <-chan State {
	ch := make(chan State, 1)

	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	s.subMu.Unlock()

	go func() {
		<-ctx.Done()
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}()

	return ch
}

func (s *Store) notify(snapshot State) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- snapshot:
		default:
			// drop the stale snapshot, replace with the fresh one
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snapshot:
			default:
			}
		}
	}
}

// mutate runs fn under the write lock and broadcasts the resulting snapshot
// when fn succeeds. fn operates on the live state and must leave it
// untouched on error.
func (s *Store) mutate(fn func(st *State) error) error {
	s.mu.Lock()
	err := fn(&s.state)
	var snapshot State
	if err == nil {
		snapshot = s.state.Clone()
	}
	s.mu.Unlock()

	if err != nil {
		return err
	}
	s.notify(snapshot)
	return nil
}

// SetMode switches between the hodl and trade views.
func (s *Store) SetMode(mode domain.Mode) error {
	if !mode.IsValid() {
		return errors.Errorf("invalid mode %q", mode)
	}
	return s.mutate(func(st *State) error {
		st.Mode = mode
		return nil
	})
}

// SetUser replaces the user identity. A nil user clears it.
func (s *Store) SetUser(user *domain.User) {
	_ = s.mutate(func(st *State) error {
		if user != nil {
			u := *user
			st.User = &u
		} else {
			st.User = nil
		}
		return nil
	})
}

// SetAuthenticated flips the session authentication flag.
func (s *Store) SetAuthenticated(authenticated bool) {
	_ = s.mutate(func(st *State) error {
		st.IsAuthenticated = authenticated
		return nil
	})
}

// SetCurrentPair switches the active trading pair.
func (s *Store) SetCurrentPair(pair domain.Pair) {
	_ = s.mutate(func(st *State) error {
		st.CurrentPair = pair
		return nil
	})
}

func ledgerFor(st *State, w domain.Wallet) *[]domain.Asset {
	if w == domain.WalletHodl {
		return &st.HodlAssets
	}
	return &st.TradeAssets
}

func findAsset(assets []domain.Asset, symbol string) int {
	for i, a := range assets {
		if a.Symbol == symbol {
			return i
		}
	}
	return -1
}

// TransferAssets moves amount of symbol from one wallet to the other as a
// single atomic transition. The source asset must exist and hold at least
// amount; otherwise the state stays untouched and the reason is returned.
// A same-wallet transfer is accepted and nets out to a no-op.
func (s *Store) TransferAssets(from, to domain.Wallet, symbol string, amount decimal.Decimal) error {
	if !from.IsValid() || !to.IsValid() {
		return errors.Errorf("invalid wallet, from=%q to=%q", from, to)
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrNonPositiveAmount
	}

	err := s.mutate(func(st *State) error {
		src := ledgerFor(st, from)
		dst := ledgerFor(st, to)

		si := findAsset(*src, symbol)
		if si == -1 {
			return errors.Wrapf(ErrUnknownAsset, "%s in %s wallet", symbol, from)
		}
		if (*src)[si].Balance.LessThan(amount) {
			return errors.Wrapf(ErrInsufficientBalance, "%s: have %s, need %s",
				symbol, (*src)[si].Balance, amount)
		}

		source := (*src)[si]

		di := findAsset(*dst, symbol)
		if di == -1 {
			created := source
			created.Balance = amount
			*dst = append(*dst, created.Revalue())
		} else {
			dest := (*dst)[di]
			dest.Balance = dest.Balance.Add(amount)
			(*dst)[di] = dest.Revalue()
		}

		// debit after the credit targets were resolved so a same-wallet
		// transfer lands on the already-credited record
		si = findAsset(*src, symbol)
		source = (*src)[si]
		source.Balance = source.Balance.Sub(amount)
		(*src)[si] = source.Revalue()
		return nil
	})
	if err != nil {
		s.logger.Warn("transfer rejected",
			zap.String("from", from.String()),
			zap.String("to", to.String()),
			zap.String("symbol", symbol),
			zap.String("amount", amount.String()),
			zap.Error(err))
		return err
	}

	s.logger.Info("assets transferred",
		zap.String("from", from.String()),
		zap.String("to", to.String()),
		zap.String("symbol", symbol),
		zap.String("amount", amount.String()))
	return nil
}

// AddTransaction prepends a transaction to the append-only log.
func (s *Store) AddTransaction(tx domain.Transaction) {
	_ = s.mutate(func(st *State) error {
		st.Transactions = append([]domain.Transaction{tx}, st.Transactions...)
		return nil
	})
}

// AddOrder records a submitted order, newest first. The order is normalized
// to its initial lifecycle state: open with nothing filled. Market orders
// must not carry a price; limit and stop-limit orders must.
func (s *Store) AddOrder(order domain.Order) error {
	if order.ID == "" {
		return errors.Wrap(ErrInvalidOrder, "missing id")
	}
	if !order.Type.IsValid() {
		return errors.Wrapf(ErrInvalidOrder, "unknown type %q", order.Type)
	}
	if !order.Side.IsValid() {
		return errors.Wrapf(ErrInvalidOrder, "unknown side %q", order.Side)
	}
	if order.Amount.LessThanOrEqual(decimal.Zero) {
		return errors.Wrap(ErrInvalidOrder, "amount must be positive")
	}
	if order.Type == domain.OrderTypeMarket && order.Price != nil {
		return errors.Wrap(ErrInvalidOrder, "market order cannot carry a price")
	}
	if order.Type != domain.OrderTypeMarket && order.Price == nil {
		return errors.Wrapf(ErrInvalidOrder, "%s order requires a price", order.Type)
	}

	order.Status = domain.OrderStatusOpen
	order.Filled = decimal.Zero

	err := s.mutate(func(st *State) error {
		st.Orders = append([]domain.Order{order.Clone()}, st.Orders...)
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("order placed",
		zap.String("id", order.ID),
		zap.String("pair", order.Pair.String()),
		zap.String("type", string(order.Type)),
		zap.String("side", string(order.Side)),
		zap.String("amount", order.Amount.String()))
	return nil
}

// OrderPatch is a partial update of an order's mutable fields.
// Nil fields are left unchanged. ID, pair, side, type, amount and
// timestamp can never be patched.
type OrderPatch struct {
	Price  *decimal.Decimal
	Filled *decimal.Decimal
	Status *domain.OrderStatus
}

// UpdateOrder merges the patch into the order matching id.
// Orders in a terminal status are frozen.
func (s *Store) UpdateOrder(id string, patch OrderPatch) error {
	if patch.Status != nil && !patch.Status.IsValid() {
		return errors.Errorf("invalid order status %q", *patch.Status)
	}

	return s.mutate(func(st *State) error {
		for i := range st.Orders {
			if st.Orders[i].ID != id {
				continue
			}
			if st.Orders[i].Status.IsTerminal() {
				return errors.Wrapf(ErrOrderFinal, "order %s is %s", id, st.Orders[i].Status)
			}

			updated := st.Orders[i].Clone()
			if patch.Price != nil {
				p := *patch.Price
				updated.Price = &p
			}
			if patch.Filled != nil {
				updated.Filled = *patch.Filled
			}
			if patch.Status != nil {
				updated.Status = *patch.Status
			}
			st.Orders[i] = updated
			return nil
		}
		return errors.Wrapf(ErrOrderNotFound, "id %s", id)
	})
}

// ApplyPriceTicks applies tick to every asset in both ledgers as one
// atomic transition. tick must be pure.
func (s *Store) ApplyPriceTicks(tick func(domain.Asset) domain.Asset) {
	_ = s.mutate(func(st *State) error {
		for i, a := range st.HodlAssets {
			st.HodlAssets[i] = tick(a)
		}
		for i, a := range st.TradeAssets {
			st.TradeAssets[i] = tick(a)
		}
		return nil
	})
}
