package mockapi

import (
	"errors"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"orderdash/internal/model"
)

var (
	ErrUsernameTaken      = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrOrderNotFound      = errors.New("order not found")
)

type user struct {
	model.User
	passwordHash []byte
}

// Store is the stub's in-memory state. It exists so the dashboard can be
// exercised without the real backend; nothing survives a restart.
type Store struct {
	mu         sync.Mutex
	users      map[string]*user // keyed by username
	orders     []*model.Order   // insertion order, newest last
	nextUserID int64
	nextID     int64
}

func NewStore() *Store {
	return &Store{
		users:      make(map[string]*user),
		nextUserID: 1,
		nextID:     1,
	}
}

func (s *Store) Register(username, email, password string) (*model.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[username]; ok {
		return nil, ErrUsernameTaken
	}
	u := &user{
		User: model.User{
			ID:        s.nextUserID,
			Username:  username,
			Email:     email,
			CreatedAt: time.Now().UTC().Format(time.RFC3339),
		},
		passwordHash: hash,
	}
	s.nextUserID++
	s.users[username] = u

	record := u.User
	return &record, nil
}

func (s *Store) Authenticate(username, password string) (*model.User, error) {
	s.mu.Lock()
	u, ok := s.users[username]
	s.mu.Unlock()
	if !ok {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(u.passwordHash, []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	record := u.User
	return &record, nil
}

func (s *Store) CreateOrder(req model.CreateOrderRequest) *model.Order {
	s.mu.Lock()
	defer s.mu.Unlock()

	order := &model.Order{
		ID:           s.nextID,
		CustomerName: req.CustomerName,
		ProductName:  req.ProductName,
		Quantity:     req.Quantity,
		UnitPrice:    req.UnitPrice,
		TotalAmount:  round2(float64(req.Quantity) * req.UnitPrice),
		Status:       model.StatusPending,
		CreatedAt:    time.Now().UTC(),
	}
	s.nextID++
	s.orders = append(s.orders, order)

	record := *order
	return &record
}

// ListOrders filters by exact status and case-insensitive customer_name
// substring, newest first, then paginates.
func (s *Store) ListOrders(f model.Filter) *model.OrdersPage {
	s.mu.Lock()
	defer s.mu.Unlock()

	matched := make([]model.Order, 0, len(s.orders))
	needle := strings.ToLower(f.CustomerName)
	for _, o := range s.orders {
		if f.Status != "" && o.Status != f.Status {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(o.CustomerName), needle) {
			continue
		}
		matched = append(matched, *o)
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	page, perPage := f.Page, f.PerPage
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 10
	}

	total := len(matched)
	totalPages := int(math.Ceil(float64(total) / float64(perPage)))

	start := (page - 1) * perPage
	if start > total {
		start = total
	}
	end := start + perPage
	if end > total {
		end = total
	}

	return &model.OrdersPage{
		Orders:     matched[start:end],
		Total:      total,
		Page:       page,
		PerPage:    perPage,
		TotalPages: totalPages,
	}
}

func (s *Store) GetOrder(id int64) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, o := range s.orders {
		if o.ID == id {
			record := *o
			return &record, nil
		}
	}
	return nil, ErrOrderNotFound
}

func (s *Store) UpdateStatus(id int64, status model.OrderStatus) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, o := range s.orders {
		if o.ID == id {
			now := time.Now().UTC()
			o.Status = status
			o.UpdatedAt = &now
			record := *o
			return &record, nil
		}
	}
	return nil, ErrOrderNotFound
}

func (s *Store) DeleteOrder(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, o := range s.orders {
		if o.ID == id {
			s.orders = append(s.orders[:i], s.orders[i+1:]...)
			return nil
		}
	}
	return ErrOrderNotFound
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
