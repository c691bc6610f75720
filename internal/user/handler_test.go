package user

import (
	"bytes"
	"context"
	"encoding/json"
	"idea-review-platform/internal/config"
	"idea-review-platform/internal/domain"
	"idea-review-platform/internal/middleware"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockService is a mock implementation of the Service interface
type MockService struct {
	mock.Mock
}

func (m *MockService) Register(user *domain.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockService) Login(email, password string) (*domain.User, error) {
	args := m.Called(email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockService) GetUserByID(id uint64) (*domain.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockService) SearchUsers(ctx context.Context, query string) ([]domain.SafeUser, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return []domain.SafeUser{}, args.Error(1)
	}
	return args.Get(0).([]domain.SafeUser), args.Error(1)
}

func (m *MockService) IncreaseTokenVersion(id uint64) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockService) DeactivateUser(id uint64) error {
	args := m.Called(id)
	return args.Error(0)
}

func setupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	config.AppConfig.JWTSecret = "test-secret"
	router := gin.New()
	router.Use(middleware.ErrorHandler())
	return router
}

func TestRegister_Success(t *testing.T) {
	mockService := new(MockService)
	handler := NewHandler(mockService, nil)
	router := setupRouter()

	mockService.On("Register", mock.MatchedBy(func(user *domain.User) bool {
		return user.Name == "John Doe" &&
			user.Email == "john@example.com" &&
			user.Password == "password123"
	})).Return(nil).Run(func(args mock.Arguments) {
		user := args.Get(0).(*domain.User)
		user.ID = 1
		user.CreatedAt = time.Now()
		user.UpdatedAt = time.Now()
	})

	router.POST("/register", func(c *gin.Context) {
		handler.Register(c)
	})

	payload := FormRegister{
		Name:     "John Doe",
		Email:    "john@example.com",
		Password: "password123",
	}
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest("POST", "/register", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.NotNil(t, response["user"])
	mockService.AssertExpectations(t)
}

func TestRegister_InvalidEmail(t *testing.T) {
	mockService := new(MockService)
	handler := NewHandler(mockService, nil)
	router := setupRouter()

	router.POST("/register", func(c *gin.Context) {
		handler.Register(c)
	})

	payload := FormRegister{
		Name:     "John Doe",
		Email:    "invalid-email",
		Password: "password123",
	}
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest("POST", "/register", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestRegister_ShortPassword(t *testing.T) {
	mockService := new(MockService)
	handler := NewHandler(mockService, nil)
	router := setupRouter()

	router.POST("/register", func(c *gin.Context) {
		handler.Register(c)
	})

	payload := FormRegister{
		Name:     "John Doe",
		Email:    "john@example.com",
		Password: "123",
	}
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest("POST", "/register", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestLogin_Success(t *testing.T) {
	mockService := new(MockService)
	handler := NewHandler(mockService, nil)
	router := setupRouter()

	user := &domain.User{
		ID:       1,
		Name:     "John Doe",
		Email:    "john@example.com",
		IsActive: true,
	}

	mockService.On("Login", "john@example.com", "password123").Return(user, nil)

	router.POST("/login", func(c *gin.Context) {
		handler.Login(c)
	})

	payload := FormLogin{
		Email:    "john@example.com",
		Password: "password123",
	}
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest("POST", "/login", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.NotNil(t, response["access_token"])
	assert.NotNil(t, response["user"])
	mockService.AssertExpectations(t)
}

func TestLogin_UserNotFound(t *testing.T) {
	mockService := new(MockService)
	handler := NewHandler(mockService, nil)
	router := setupRouter()

	mockService.On("Login", "nonexistent@example.com", "password123").
		Return(nil, assert.AnError)

	router.POST("/login", func(c *gin.Context) {
		handler.Login(c)
	})

	payload := FormLogin{
		Email:    "nonexistent@example.com",
		Password: "password123",
	}
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest("POST", "/login", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.NotEqual(t, http.StatusOK, w.Code)
	mockService.AssertExpectations(t)
}

func TestLogout_Success(t *testing.T) {
	mockService := new(MockService)
	handler := NewHandler(mockService, nil)
	router := setupRouter()

	mockService.On("IncreaseTokenVersion", mock.Anything).Return(nil)

	router.POST("/logout", func(c *gin.Context) {
		c.Set("user_id", uint64(1))
		handler.Logout(c)
	})

	req := httptest.NewRequest("POST", "/logout", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestGetProfile_Success(t *testing.T) {
	mockService := new(MockService)
	handler := NewHandler(mockService, nil)
	router := setupRouter()

	user := &domain.User{
		ID:        1,
		Name:      "John Doe",
		Email:     "john@example.com",
		IsActive:  true,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	mockService.On("GetUserByID", uint64(1)).Return(user, nil)

	router.GET("/profile", func(c *gin.Context) {
		c.Set("user_id", uint64(1))
		handler.GetProfile(c)
	})

	req := httptest.NewRequest("GET", "/profile", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var response domain.SafeUser
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, "John Doe", response.Name)
	assert.Equal(t, "john@example.com", response.Email)
	mockService.AssertExpectations(t)
}

func TestGetProfile_UserNotFound(t *testing.T) {
	mockService := new(MockService)
	handler := NewHandler(mockService, nil)
	router := setupRouter()

	mockService.On("GetUserByID", uint64(999)).Return(nil, assert.AnError)

	router.GET("/profile", func(c *gin.Context) {
		c.Set("user_id", uint64(999))
		handler.GetProfile(c)
	})

	req := httptest.NewRequest("GET", "/profile", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.NotEqual(t, http.StatusOK, w.Code)
	mockService.AssertExpectations(t)
}

func TestSearchUsers_Success(t *testing.T) {
	mockService := new(MockService)
	handler := NewHandler(mockService, nil)
	router := setupRouter()

	results := []domain.SafeUser{
		{ID: 2, Name: "Jane Doe", Email: "jane@example.com"},
		{ID: 3, Name: "John Smith", Email: "john.smith@example.com"},
	}

	mockService.On("SearchUsers", mock.Anything, "john").Return(results, nil)

	router.GET("/search", func(c *gin.Context) {
		handler.SearchUsers(c)
	})

	req := httptest.NewRequest("GET", "/search?q=john", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var response []domain.SafeUser
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, 2, len(response))
	mockService.AssertExpectations(t)
}

func TestSearchUsers_EmptyResult(t *testing.T) {
	mockService := new(MockService)
	handler := NewHandler(mockService, nil)
	router := setupRouter()

	mockService.On("SearchUsers", mock.Anything, "nonexistent").Return([]domain.SafeUser{}, nil)

	router.GET("/search", func(c *gin.Context) {
		handler.SearchUsers(c)
	})

	req := httptest.NewRequest("GET", "/search?q=nonexistent", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var response []domain.SafeUser
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, 0, len(response))
	mockService.AssertExpectations(t)
}
