// Package mockapi is an in-process, in-memory stand-in for the Shopie
// backend. It implements the REST surface the client consumes, with the same
// wire format and error messages, for local development and integration
// tests. State lives in memory and vanishes with the process.
package mockapi

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"golang.org/x/crypto/bcrypt"

	"github.com/shopie/shopie-cli/internal/domain/catalog"
)

type user struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash []byte
	Role         string
}

type cartItem struct {
	ID       int64            `json:"id"`
	Product  *catalog.Product `json:"product"`
	Quantity int              `json:"quantite"`
}

type orderLine struct {
	ID       int64            `json:"id"`
	Product  *catalog.Product `json:"product"`
	Quantity int              `json:"quantite"`
	Price    float64          `json:"prix"`
}

type orderRec struct {
	ID     int64       `json:"id"`
	Total  float64     `json:"total"`
	Date   string      `json:"date"`
	Status string      `json:"statut"`
	Items  []orderLine `json:"orderItems"`
	owner  string
}

type paymentRec struct {
	ID     int64   `json:"id"`
	Amount float64 `json:"montant"`
	Method string  `json:"methode"`
	Date   string  `json:"date"`
	Status string  `json:"statut"`
	order  *orderRec
}

// Server is the mock backend. It implements http.Handler and can be mounted
// in an httptest.Server or served standalone via the CLI.
type Server struct {
	logger *slog.Logger
	router *mux.Router

	mu       sync.Mutex
	nextID   int64
	users    map[string]*user  // by email
	tokens   map[string]string // bearer token -> email
	products []catalog.Product
	carts    map[string][]cartItem // email -> items
	orders   []*orderRec
	payments map[int64]*paymentRec
}

// NewServer creates a mock backend seeded with a small product catalog.
func NewServer(logger *slog.Logger) *Server {
	s := &Server{
		logger:   logger,
		nextID:   100,
		users:    make(map[string]*user),
		tokens:   make(map[string]string),
		carts:    make(map[string][]cartItem),
		payments: make(map[int64]*paymentRec),
	}
	s.seedProducts()
	s.routes()
	return s
}

func (s *Server) seedProducts() {
	s.products = []catalog.Product{
		{ID: 1, Name: "Casque audio", Description: "Casque circum-aural sans fil", Price: 89.90, Stock: 25},
		{ID: 2, Name: "Clavier mécanique", Description: "Switches bruns, format TKL", Price: 119.00, Stock: 12},
		{ID: 3, Name: "Souris ergonomique", Description: "Souris verticale 6 boutons", Price: 49.50, Stock: 40},
		{ID: 4, Name: "Webcam HD", Description: "1080p avec micro intégré", Price: 59.99, Stock: 0},
	}
}

func (s *Server) routes() {
	r := mux.NewRouter()
	r.HandleFunc("/auth/register", s.handleRegister).Methods(http.MethodPost)
	r.HandleFunc("/auth/login", s.handleLogin).Methods(http.MethodPost)

	auth := r.NewRoute().Subrouter()
	auth.Use(s.authMiddleware)
	auth.HandleFunc("/products", s.handleProducts).Methods(http.MethodGet)
	auth.HandleFunc("/products/search", s.handleProductSearch).Methods(http.MethodGet)
	auth.HandleFunc("/cart", s.handleCartGet).Methods(http.MethodGet)
	auth.HandleFunc("/cart", s.handleCartAdd).Methods(http.MethodPost)
	auth.HandleFunc("/cart", s.handleCartClear).Methods(http.MethodDelete)
	auth.HandleFunc("/cart/{id:[0-9]+}", s.handleCartUpdate).Methods(http.MethodPut)
	auth.HandleFunc("/cart/{id:[0-9]+}", s.handleCartRemove).Methods(http.MethodDelete)
	auth.HandleFunc("/orders", s.handleOrderCreate).Methods(http.MethodPost)
	auth.HandleFunc("/orders", s.handleOrderList).Methods(http.MethodGet)
	auth.HandleFunc("/orders/{id:[0-9]+}", s.handleOrderGet).Methods(http.MethodGet)
	auth.HandleFunc("/payments", s.handlePaymentCreate).Methods(http.MethodPost)
	auth.HandleFunc("/payments/{id:[0-9]+}/process", s.handlePaymentProcess).Methods(http.MethodPost)
	s.router = r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) id() int64 {
	s.nextID++
	return s.nextID
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.WriteHeader(status)
	_, _ = w.Write([]byte(message))
}

type ctxKey string

const userKey ctxKey = "user"

// authMiddleware resolves the bearer token to a user and rejects the
// request with 401 otherwise.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeError(w, http.StatusUnauthorized, "Authentification requise")
			return
		}

		s.mu.Lock()
		email, found := s.tokens[token]
		u := s.users[email]
		s.mu.Unlock()
		if !found || u == nil {
			writeError(w, http.StatusUnauthorized, "Jeton invalide")
			return
		}

		ctx := contextWithUser(r.Context(), u)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type authPayload struct {
	Name     string `json:"nom"`
	Email    string `json:"email"`
	Password string `json:"motDePasse"`
}

type authResponse struct {
	Token string `json:"token"`
	Type  string `json:"type"`
	ID    int64  `json:"id"`
	Name  string `json:"nom"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req authPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Requête invalide")
		return
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Nom, email et mot de passe sont obligatoires")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Erreur interne")
		return
	}

	s.mu.Lock()
	if _, exists := s.users[req.Email]; exists {
		s.mu.Unlock()
		writeError(w, http.StatusBadRequest, "Email déjà utilisé")
		return
	}
	u := &user{
		ID:           s.id(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         "USER",
	}
	s.users[req.Email] = u
	token := uuid.NewString()
	s.tokens[token] = req.Email
	s.mu.Unlock()

	s.logger.Info("mock register", "email", req.Email)
	writeJSON(w, http.StatusOK, authResponse{
		Token: token, Type: "Bearer",
		ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role,
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req authPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Requête invalide")
		return
	}

	s.mu.Lock()
	u := s.users[req.Email]
	s.mu.Unlock()
	if u == nil || bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(req.Password)) != nil {
		writeError(w, http.StatusUnauthorized, "Email ou mot de passe incorrect")
		return
	}

	token := uuid.NewString()
	s.mu.Lock()
	s.tokens[token] = req.Email
	s.mu.Unlock()

	s.logger.Info("mock login", "email", req.Email)
	writeJSON(w, http.StatusOK, authResponse{
		Token: token, Type: "Bearer",
		ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role,
	})
}

func (s *Server) handleProducts(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	products := append([]catalog.Product{}, s.products...)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, products)
}

func (s *Server) handleProductSearch(w http.ResponseWriter, r *http.Request) {
	query := strings.ToLower(r.URL.Query().Get("nom"))
	s.mu.Lock()
	var matches []catalog.Product
	for _, p := range s.products {
		if strings.Contains(strings.ToLower(p.Name), query) {
			matches = append(matches, p)
		}
	}
	s.mu.Unlock()
	if matches == nil {
		matches = []catalog.Product{}
	}
	writeJSON(w, http.StatusOK, matches)
}

func (s *Server) findProduct(id int64) *catalog.Product {
	for i := range s.products {
		if s.products[i].ID == id {
			return &s.products[i]
		}
	}
	return nil
}

func (s *Server) handleCartGet(w http.ResponseWriter, r *http.Request) {
	u := userFrom(r.Context())
	s.mu.Lock()
	items := append([]cartItem{}, s.carts[u.Email]...)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleCartAdd(w http.ResponseWriter, r *http.Request) {
	u := userFrom(r.Context())
	var req struct {
		ProductID int64 `json:"productId"`
		Quantity  int   `json:"quantite"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Requête invalide")
		return
	}
	if req.Quantity < 1 {
		writeError(w, http.StatusBadRequest, "La quantité doit être au moins 1")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	product := s.findProduct(req.ProductID)
	if product == nil {
		writeError(w, http.StatusNotFound, "Produit non trouvé")
		return
	}

	items := s.carts[u.Email]
	for i := range items {
		if items[i].Product.ID == req.ProductID {
			items[i].Quantity += req.Quantity
			s.carts[u.Email] = items
			writeJSON(w, http.StatusOK, items[i])
			return
		}
	}

	item := cartItem{ID: s.id(), Product: product, Quantity: req.Quantity}
	s.carts[u.Email] = append(items, item)
	writeJSON(w, http.StatusOK, item)
}

func (s *Server) handleCartUpdate(w http.ResponseWriter, r *http.Request) {
	u := userFrom(r.Context())
	itemID, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	quantity, err := strconv.Atoi(r.URL.Query().Get("quantite"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Quantité invalide")
		return
	}
	if quantity < 1 {
		writeError(w, http.StatusBadRequest, "La quantité doit être au moins 1")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	items := s.carts[u.Email]
	for i := range items {
		if items[i].ID == itemID {
			items[i].Quantity = quantity
			s.carts[u.Email] = items
			writeJSON(w, http.StatusOK, items[i])
			return
		}
	}
	writeError(w, http.StatusNotFound, "Article non trouvé")
}

func (s *Server) handleCartRemove(w http.ResponseWriter, r *http.Request) {
	u := userFrom(r.Context())
	itemID, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)

	s.mu.Lock()
	defer s.mu.Unlock()
	items := s.carts[u.Email]
	for i := range items {
		if items[i].ID == itemID {
			s.carts[u.Email] = append(items[:i], items[i+1:]...)
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	writeError(w, http.StatusNotFound, "Article non trouvé")
}

func (s *Server) handleCartClear(w http.ResponseWriter, r *http.Request) {
	u := userFrom(r.Context())
	s.mu.Lock()
	delete(s.carts, u.Email)
	s.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleOrderCreate(w http.ResponseWriter, r *http.Request) {
	u := userFrom(r.Context())

	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.carts[u.Email]
	if len(items) == 0 {
		writeError(w, http.StatusBadRequest, "Le panier est vide")
		return
	}

	var total float64
	var lines []orderLine
	for _, item := range items {
		total += item.Product.Price * float64(item.Quantity)
		lines = append(lines, orderLine{
			ID:       s.id(),
			Product:  item.Product,
			Quantity: item.Quantity,
			Price:    item.Product.Price,
		})
	}

	ord := &orderRec{
		ID:     s.id(),
		Total:  total,
		Date:   time.Now().UTC().Format(time.RFC3339),
		Status: "PENDING",
		Items:  lines,
		owner:  u.Email,
	}
	s.orders = append(s.orders, ord)

	s.logger.Info("mock order created", "order_id", ord.ID, "total", total)
	writeJSON(w, http.StatusOK, ord)
}

func (s *Server) handleOrderList(w http.ResponseWriter, r *http.Request) {
	u := userFrom(r.Context())
	s.mu.Lock()
	var mine []*orderRec
	for _, ord := range s.orders {
		if ord.owner == u.Email {
			mine = append(mine, ord)
		}
	}
	s.mu.Unlock()
	if mine == nil {
		mine = []*orderRec{}
	}
	writeJSON(w, http.StatusOK, mine)
}

func (s *Server) handleOrderGet(w http.ResponseWriter, r *http.Request) {
	u := userFrom(r.Context())
	orderID, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ord := range s.orders {
		if ord.ID == orderID && ord.owner == u.Email {
			writeJSON(w, http.StatusOK, ord)
			return
		}
	}
	writeError(w, http.StatusNotFound, "Commande non trouvée")
}

func (s *Server) handlePaymentCreate(w http.ResponseWriter, r *http.Request) {
	u := userFrom(r.Context())
	var req struct {
		OrderID int64   `json:"orderId"`
		Amount  float64 `json:"montant"`
		Method  string  `json:"methode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Requête invalide")
		return
	}
	if req.Amount <= 0 {
		writeError(w, http.StatusBadRequest, "Le montant doit être positif")
		return
	}
	if req.Method == "" {
		writeError(w, http.StatusBadRequest, "La méthode de paiement est obligatoire")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var ord *orderRec
	for _, o := range s.orders {
		if o.ID == req.OrderID && o.owner == u.Email {
			ord = o
			break
		}
	}
	if ord == nil {
		writeError(w, http.StatusNotFound, "Commande non trouvée")
		return
	}

	pay := &paymentRec{
		ID:     s.id(),
		Amount: req.Amount,
		Method: req.Method,
		Date:   time.Now().UTC().Format(time.RFC3339),
		Status: "PENDING",
		order:  ord,
	}
	s.payments[pay.ID] = pay
	writeJSON(w, http.StatusOK, pay)
}

func (s *Server) handlePaymentProcess(w http.ResponseWriter, r *http.Request) {
	paymentID, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)

	s.mu.Lock()
	defer s.mu.Unlock()
	pay := s.payments[paymentID]
	if pay == nil {
		writeError(w, http.StatusNotFound, "Paiement non trouvé")
		return
	}

	pay.Status = "PAID"
	pay.order.Status = "PAID"
	s.logger.Info("mock payment processed", "payment_id", pay.ID)
	writeJSON(w, http.StatusOK, pay)
}

// String describes the seeded catalog, for the CLI banner.
func (s *Server) String() string {
	return fmt.Sprintf("mock backend, %d seeded products", len(s.products))
}
