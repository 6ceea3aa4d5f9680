package store

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	perrors "github.com/pkazakov/product-catalog/internal/product/errors"
	"github.com/pkazakov/product-catalog/internal/product/model"
)

const skipIntegrationTests = "PRODUCT_SVC_SKIP_INTEGRATION_TESTS"

// ProductStoreSuite is a test suite for the PgStore implementation.
type ProductStoreSuite struct {
	suite.Suite                             // Embedding testify's suite for structured testing
	pgContainer *postgres.PostgresContainer // PostgreSQL container for integration tests
	dbPool      *pgxpool.Pool               // PostgreSQL connection pool for integration tests
	store       ProductStore                //
	logger      *slog.Logger                // Logger for the test suite
	ctx         context.Context             // Context for the test suite, used for cancellation and timeouts
}

// SetupSuite initializes the test suite by setting up a PostgreSQL container.
func (s *ProductStoreSuite) SetupSuite() {
	s.ctx = context.Background()
	var err error
	s.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))

	dbName := "products"
	dbUser := "user"
	dbPassword := "password"

	// 1. Start a PostgreSQL container with the specified configuration. Wait for the container to be ready.
	s.pgContainer, err = postgres.Run(s.ctx,
		"postgres:17.5-alpine",
		postgres.WithDatabase(dbName),
		postgres.WithUsername(dbUser),
		postgres.WithPassword(dbPassword),
		// Wait for a specific log message indicating the database service is ready.
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Minute),
		),
		// Ensure the container is ready to accept connections on the default PostgreSQL port.
		testcontainers.WithWaitStrategy(
			wait.ForListeningPort("5432/tcp"),
		),
	)
	require.NoError(s.T(), err, "Failed to run PostgreSQL container")

	// 2. Get the connection string from the container
	connStr, err := s.pgContainer.ConnectionString(s.ctx, "sslmode=disable")
	require.NoError(s.T(), err, "Failed to get connection string from container")

	// 3. Create a new pgxpool instance using the connection string
	s.dbPool, err = pgxpool.New(s.ctx, connStr)
	require.NoError(s.T(), err, "Failed to create pgxpool")

	// 3.1 Ping the database to ensure the connection is established
	for i := range 10 {
		s.logger.Info("Pinging PostgreSQL database", "attempt", i+1)
		err = s.dbPool.Ping(s.ctx)
		if err == nil {
			break
		}
		time.Sleep(time.Second * 2)
	}
	require.NoError(s.T(), err, "Failed to connect to PostgreSQL after retries")

	// 4. Database migration
	wd, _ := os.Getwd()
	migrationsPath := filepath.Join(wd, "..", "..", "..", "migrations")
	sourceURL := "file://" + migrationsPath
	m, err := migrate.New(sourceURL, connStr)
	require.NoError(s.T(), err, "Failed to create migrate instance")
	err = m.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		_, _ = m.Close()
		require.NoError(s.T(), err, "Failed to apply migrations")
	}
	s.logger.Info("Migrations applied for integration tests")

	s.store = NewPgStore(s.dbPool)
	s.logger.Info("Initialization complete for ProductStoreSuite")
}

// TearDownSuite cleans up resources after all tests in the suite have run.
func (s *ProductStoreSuite) TearDownSuite() {
	s.logger.Info("Tearing down suite...")
	if s.dbPool != nil {
		s.dbPool.Close()
		s.logger.Info("DB pool closed.")
	}
	if s.pgContainer != nil {
		s.logger.Info("Terminating PostgreSQL container...")
		if err := s.pgContainer.Terminate(s.ctx); err != nil {
			s.logger.Warn("failed to terminate PostgreSQL container", "error", err)
		} else {
			s.logger.Info("PostgreSQL container terminated.")
		}
	}
}

// SetupTest prepares the database for each test by truncating the products table.
func (s *ProductStoreSuite) SetupTest() {
	_, err := s.dbPool.Exec(s.ctx, "TRUNCATE TABLE products CASCADE")
	require.NoError(s.T(), err, "Failed to truncate products table")
}

// TestProductStoreIntegration runs the PgStore integration tests.
func TestProductStoreIntegration(t *testing.T) {
	// Skip integration tests if the environment variable is set
	if os.Getenv(skipIntegrationTests) == "1" {
		t.Skip("Skipping integration tests based on " + skipIntegrationTests + " env var")
	}
	// Run the test suite
	suite.Run(t, new(ProductStoreSuite))
}

// createTestProduct is a helper function to create a product for testing purposes.
func (s *ProductStoreSuite) createTestProduct(name, price string, available bool, category model.Category) *model.Product {
	s.T().Helper()
	product, err := s.store.Create(s.ctx, &model.Product{
		Name:        name,
		Description: "A " + name,
		Price:       decimal.RequireFromString(price),
		Available:   available,
		Category:    category,
	})
	require.NoError(s.T(), err, "createTestProduct helper failed to create product")
	return product
}

func (s *ProductStoreSuite) TestCreateAndFindByID() {
	// 1. Create a new product with no ID
	created := s.createTestProduct("Fedora", "12.50", true, model.CategoryCloths)

	// 2. Check that the product was assigned an ID
	require.NotEqual(s.T(), uuid.Nil, created.ID, "Created product ID should be assigned")
	require.Equal(s.T(), "Fedora", created.Name)
	require.Equal(s.T(), "A Fedora", created.Description)
	require.Equal(s.T(), "12.50", created.Price.String(), "Price should round-trip as exact decimal text")
	require.True(s.T(), created.Available)
	require.Equal(s.T(), model.CategoryCloths, created.Category)
	require.NotZero(s.T(), created.CreatedAt, "CreatedAt should be set")

	// 3. Fetch the product by ID and check all fields match
	fetched, err := s.store.FindByID(s.ctx, created.ID)
	require.NoError(s.T(), err, "FindByID should not return an error")
	require.Equal(s.T(), created.ID, fetched.ID)
	require.Equal(s.T(), created.Name, fetched.Name)
	require.Equal(s.T(), created.Description, fetched.Description)
	require.Equal(s.T(), created.Price.String(), fetched.Price.String())
	require.Equal(s.T(), created.Available, fetched.Available)
	require.Equal(s.T(), created.Category, fetched.Category)
	require.WithinDuration(s.T(), created.CreatedAt, fetched.CreatedAt, time.Second)

	// 4. FindAll returns exactly the one record
	all, err := s.store.FindAll(s.ctx)
	require.NoError(s.T(), err)
	require.Len(s.T(), all, 1)
	require.Equal(s.T(), created.ID, all[0].ID)
}

func (s *ProductStoreSuite) TestFindByID_NotFound() {
	_, err := s.store.FindByID(s.ctx, uuid.New())
	require.ErrorIs(s.T(), err, perrors.ErrProductNotFound, "Expected ErrProductNotFound for non-existent product")
}

func (s *ProductStoreSuite) TestFindAll() {
	all, err := s.store.FindAll(s.ctx)
	require.NoError(s.T(), err)
	require.Empty(s.T(), all, "FindAll should return an empty slice before any create")

	s.createTestProduct("Fedora", "12.50", true, model.CategoryCloths)
	s.createTestProduct("Hammer", "9.99", true, model.CategoryTools)

	all, err = s.store.FindAll(s.ctx)
	require.NoError(s.T(), err)
	require.Len(s.T(), all, 2, "Should retrieve 2 products")
	assert.Equal(s.T(), "Fedora", all[0].Name)
	assert.Equal(s.T(), "Hammer", all[1].Name)
}

func (s *ProductStoreSuite) TestUpdateProduct() {
	created := s.createTestProduct("Fedora", "12.50", true, model.CategoryCloths)

	created.Description = "Updated description"
	updated, err := s.store.Update(s.ctx, created)
	require.NoError(s.T(), err, "Update should not return an error")
	require.Equal(s.T(), created.ID, updated.ID)
	require.Equal(s.T(), "Updated description", updated.Description)

	// only the mutated field changed
	fetched, err := s.store.FindByID(s.ctx, created.ID)
	require.NoError(s.T(), err)
	require.Equal(s.T(), "Updated description", fetched.Description)
	require.Equal(s.T(), "Fedora", fetched.Name)
	require.Equal(s.T(), "12.50", fetched.Price.String())
	require.True(s.T(), fetched.Available)
	require.Equal(s.T(), model.CategoryCloths, fetched.Category)
}

func (s *ProductStoreSuite) TestUpdateProduct_NotFound() {
	missing := &model.Product{
		ID:       uuid.New(),
		Name:     "Non-existent Product",
		Price:    decimal.RequireFromString("99.99"),
		Category: model.CategoryTools,
	}
	_, err := s.store.Update(s.ctx, missing)
	require.ErrorIs(s.T(), err, perrors.ErrProductNotFound, "Expected ErrProductNotFound for non-existent product")
}

func (s *ProductStoreSuite) TestUpdateProduct_UnsetID() {
	unsaved := &model.Product{
		Name:     "Unsaved Product",
		Price:    decimal.RequireFromString("1.00"),
		Category: model.CategoryTools,
	}
	_, err := s.store.Update(s.ctx, unsaved)
	require.ErrorIs(s.T(), err, perrors.ErrProductNotFound, "Expected ErrProductNotFound for a product without an ID")
}

func (s *ProductStoreSuite) TestDeleteProduct() {
	created := s.createTestProduct("Fedora", "12.50", true, model.CategoryCloths)

	err := s.store.DeleteByID(s.ctx, created.ID)
	require.NoError(s.T(), err, "DeleteByID should not return an error")

	_, err = s.store.FindByID(s.ctx, created.ID)
	require.ErrorIs(s.T(), err, perrors.ErrProductNotFound, "Deleted product should not be found")

	// deleting the same product again fails
	err = s.store.DeleteByID(s.ctx, created.ID)
	require.ErrorIs(s.T(), err, perrors.ErrProductNotFound, "Second delete should report the product missing")
}

func (s *ProductStoreSuite) TestFindByName() {
	fedora := s.createTestProduct("Fedora", "12.50", true, model.CategoryCloths)
	s.createTestProduct("Hammer", "9.99", true, model.CategoryTools)

	found, err := s.store.FindByName(s.ctx, "Fedora")
	require.NoError(s.T(), err)
	require.Len(s.T(), found, 1)
	require.Equal(s.T(), fedora.ID, found[0].ID)

	found, err = s.store.FindByName(s.ctx, "Beret")
	require.NoError(s.T(), err)
	require.Empty(s.T(), found)
}

func (s *ProductStoreSuite) TestFindByPrice() {
	s.createTestProduct("Fedora", "12.50", true, model.CategoryCloths)
	s.createTestProduct("Sardines", "12.50", false, model.CategoryFood)
	s.createTestProduct("Hammer", "9.99", true, model.CategoryTools)

	found, err := s.store.FindByPrice(s.ctx, decimal.RequireFromString("12.50"))
	require.NoError(s.T(), err)
	require.Len(s.T(), found, 2)

	// numeric equality, independent of textual scale
	found, err = s.store.FindByPrice(s.ctx, decimal.RequireFromString("12.5"))
	require.NoError(s.T(), err)
	require.Len(s.T(), found, 2)
}

func (s *ProductStoreSuite) TestFindByAvailability() {
	s.createTestProduct("Fedora", "12.50", true, model.CategoryCloths)
	s.createTestProduct("Sardines", "12.50", false, model.CategoryFood)

	available, err := s.store.FindByAvailability(s.ctx, true)
	require.NoError(s.T(), err)
	require.Len(s.T(), available, 1)
	require.Equal(s.T(), "Fedora", available[0].Name)

	unavailable, err := s.store.FindByAvailability(s.ctx, false)
	require.NoError(s.T(), err)
	require.Len(s.T(), unavailable, 1)
	require.Equal(s.T(), "Sardines", unavailable[0].Name)
}

func (s *ProductStoreSuite) TestFindByCategory() {
	s.createTestProduct("Fedora", "12.50", true, model.CategoryCloths)
	s.createTestProduct("Hammer", "9.99", true, model.CategoryTools)

	found, err := s.store.FindByCategory(s.ctx, model.CategoryCloths)
	require.NoError(s.T(), err)
	require.Len(s.T(), found, 1)
	require.Equal(s.T(), "Fedora", found[0].Name)

	found, err = s.store.FindByCategory(s.ctx, model.CategoryAutomotive)
	require.NoError(s.T(), err)
	require.Empty(s.T(), found)
}

func (s *ProductStoreSuite) TestPriceScaleIsPreserved() {
	created := s.createTestProduct("Fedora", "19.99", true, model.CategoryCloths)

	fetched, err := s.store.FindByID(s.ctx, created.ID)
	require.NoError(s.T(), err)
	require.Equal(s.T(), "19.99", fetched.Price.String(), "Stored price must render as the exact decimal text")
}
