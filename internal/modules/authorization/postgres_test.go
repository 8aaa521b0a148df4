package authorization

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindAgentReturnsNilWhenMissing(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	id := uuid.New()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, level, parent_agent_id FROM agents WHERE id=$1`)).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"id", "level", "parent_agent_id"}))

	repo := NewPostgresRepository(db)
	a, err := repo.FindAgent(context.Background(), id)
	require.NoError(t, err, "a missing agent is not an error")
	assert.Nil(t, a)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindAgentScansParentReference(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	id, parent := uuid.New(), uuid.New()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, level, parent_agent_id FROM agents WHERE id=$1`)).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"id", "level", "parent_agent_id"}).
			AddRow(id.String(), "LOCAL", parent.String()))

	repo := NewPostgresRepository(db)
	a, err := repo.FindAgent(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, a)
	assert.Equal(t, id, a.ID)
	assert.Equal(t, "LOCAL", a.Level)
	require.NotNil(t, a.ParentAgentID)
	assert.Equal(t, parent, *a.ParentAgentID)
}

func TestFindActiveVariantsScopedToProduct(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	tenantID, productID, variantID := uuid.New(), uuid.New(), uuid.New()
	columns := []string{"id", "product_id", "product_name", "variant_name", "sku",
		"base_price", "agent_can_delegate", "product_agent_can_delegate"}
	mock.ExpectQuery(`SELECT v\.id, v\.product_id, p\.name`).
		WithArgs(tenantID, productID).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow(variantID.String(), productID.String(), "Classic Tee", "Classic Tee / M", "TEE-M",
				20.0, true, true))

	repo := NewPostgresRepository(db)
	views, err := repo.FindActiveVariants(context.Background(), tenantID, &productID)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, variantID, views[0].VariantID)
	assert.Equal(t, 20.0, views[0].BasePrice)
	assert.True(t, views[0].ProductAgentCanDelegate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertChildrenConfigReplacesInTransaction(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	vid := uuid.New()
	c := &ChildrenConfig{
		ID:                 uuid.New(),
		TenantID:           uuid.New(),
		OwnerType:          OwnerAgent,
		OwnerID:            uuid.New(),
		ProductID:          uuid.New(),
		VariantID:          &vid,
		CanDelegateProduct: true,
		CanDelegateVariant: true,
	}

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM agent_children_configs`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO agent_children_configs`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	repo := NewPostgresRepository(db)
	require.NoError(t, repo.UpsertChildrenConfig(context.Background(), c))
	assert.NoError(t, mock.ExpectationsWereMet())
}
