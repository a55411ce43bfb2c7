package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/replydesk/replydesk-backend/internal/models"
	"github.com/replydesk/replydesk-backend/internal/repository"
	"github.com/replydesk/replydesk-backend/tests/fixtures"
	"github.com/replydesk/replydesk-backend/tests/mocks"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// SuggestionHandlerTestSuite is the test suite for SuggestionHandler
type SuggestionHandlerTestSuite struct {
	suite.Suite
	echo            *echo.Echo
	handler         *SuggestionHandler
	mockSuggestions *mocks.MockSuggestionRepository
	mockThreads     *mocks.MockThreadRepository
}

// SetupTest runs before each test
func (s *SuggestionHandlerTestSuite) SetupTest() {
	s.echo = echo.New()
	s.mockSuggestions = new(mocks.MockSuggestionRepository)
	s.mockThreads = new(mocks.MockThreadRepository)
	s.handler = NewSuggestionHandler(s.mockSuggestions, s.mockThreads)
}

// TearDownTest runs after each test
func (s *SuggestionHandlerTestSuite) TearDownTest() {
	s.mockSuggestions.AssertExpectations(s.T())
	s.mockThreads.AssertExpectations(s.T())
}

// TestSuggestionHandlerTestSuite runs the test suite
func TestSuggestionHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(SuggestionHandlerTestSuite))
}

// Helper function to create a test context
func (s *SuggestionHandlerTestSuite) createContext(method, path string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, path, strings.NewReader(""))
	rec := httptest.NewRecorder()
	c := s.echo.NewContext(req, rec)
	return c, rec
}

// ==================== ListByMessage Tests ====================

func (s *SuggestionHandlerTestSuite) TestListByMessage_ReturnsLedgerEntries() {
	// Arrange
	message := fixtures.NewMessageBuilder().WithID(2).Build()
	suggestions := []models.Suggestion{
		*fixtures.NewSuggestionBuilder().WithMessageID(2).Build(),
		*fixtures.NewSuggestionBuilder().WithID(2).WithMessageID(2).WithIntent("unclassified").Build(),
	}
	s.mockThreads.On("GetMessage", mock.Anything, uint(2)).Return(message, nil)
	s.mockSuggestions.On("ListByMessage", mock.Anything, uint(2)).Return(suggestions, nil)

	c, rec := s.createContext(http.MethodGet, "/api/messages/2/suggestions")
	c.SetPath("/api/messages/:message_id/suggestions")
	c.SetParamNames("message_id")
	c.SetParamValues("2")

	// Act
	err := s.handler.ListByMessage(c)

	// Assert
	s.NoError(err)
	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), `"refund_request"`)
	s.Contains(rec.Body.String(), `"unclassified"`)
}

func (s *SuggestionHandlerTestSuite) TestListByMessage_UnknownMessageReturns404() {
	// Arrange
	s.mockThreads.On("GetMessage", mock.Anything, uint(99)).Return(nil, repository.ErrNotFound)

	c, rec := s.createContext(http.MethodGet, "/api/messages/99/suggestions")
	c.SetPath("/api/messages/:message_id/suggestions")
	c.SetParamNames("message_id")
	c.SetParamValues("99")

	// Act
	err := s.handler.ListByMessage(c)

	// Assert
	s.NoError(err)
	s.Equal(http.StatusNotFound, rec.Code)
}

func (s *SuggestionHandlerTestSuite) TestListByMessage_InvalidIDReturns400() {
	// Arrange
	c, rec := s.createContext(http.MethodGet, "/api/messages/abc/suggestions")
	c.SetPath("/api/messages/:message_id/suggestions")
	c.SetParamNames("message_id")
	c.SetParamValues("abc")

	// Act
	err := s.handler.ListByMessage(c)

	// Assert
	s.NoError(err)
	s.Equal(http.StatusBadRequest, rec.Code)
}

// ==================== Get Tests ====================

func (s *SuggestionHandlerTestSuite) TestGet_ReturnsSuggestionWithRequiredFields() {
	// Arrange
	suggestion := fixtures.NewSuggestionBuilder().WithID(4).Build()
	s.mockSuggestions.On("GetByID", mock.Anything, uint(4)).Return(suggestion, nil)

	c, rec := s.createContext(http.MethodGet, "/api/suggestions/4")
	c.SetPath("/api/suggestions/:id")
	c.SetParamNames("id")
	c.SetParamValues("4")

	// Act
	err := s.handler.Get(c)

	// Assert
	s.NoError(err)
	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), `"required_fields":["order_id","amount"]`)
}

func (s *SuggestionHandlerTestSuite) TestGet_NotFoundReturns404() {
	// Arrange
	s.mockSuggestions.On("GetByID", mock.Anything, uint(77)).Return(nil, repository.ErrNotFound)

	c, rec := s.createContext(http.MethodGet, "/api/suggestions/77")
	c.SetPath("/api/suggestions/:id")
	c.SetParamNames("id")
	c.SetParamValues("77")

	// Act
	err := s.handler.Get(c)

	// Assert
	s.NoError(err)
	s.Equal(http.StatusNotFound, rec.Code)
}
