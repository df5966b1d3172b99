package persistence

import (
	"context"
	"fmt"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freightlens/backend/pkg/chartspec"
	"github.com/freightlens/backend/pkg/constants"
)

func TestWidgetGet(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewWidgetRepository(db)

	query := fmt.Sprintf("SELECT %s FROM %s WHERE customer_id = ? AND id = ? LIMIT 1",
		widgetColumns, constants.TableWidget)

	configJSON := `{"name":"Revenue by Carrier","chartType":"bar","groupField":"carrier_name","measureField":"retail","aggregation":"sum","filters":[],"totalRecords":42}`

	rows := sqlmock.NewRows([]string{"id", "customer_id", "name", "description", "config",
		"visibility", "dashboard_id", "section", "created_by_id", "created_date", "last_modified_date"}).
		AddRow("widget-1", "cust-1", "Revenue by Carrier", nil, configJSON,
			constants.VisibilityShared, nil, nil, "user-1",
			[]byte("2026-08-01 10:00:00"), []byte("2026-08-02 11:30:00"))

	mock.ExpectQuery(regexp.QuoteMeta(query)).WithArgs("cust-1", "widget-1").WillReturnRows(rows)

	w, err := repo.Get(context.Background(), "cust-1", "widget-1")
	require.NoError(t, err)
	require.NotNil(t, w)
	assert.Equal(t, "widget-1", w.ID)
	assert.Equal(t, chartspec.ChartBar, w.Config.ChartType)
	assert.Equal(t, "carrier_name", w.Config.GroupField)
	assert.Equal(t, 42, w.Config.TotalRecords)
	assert.Empty(t, w.DashboardID)
	assert.Equal(t, 2026, w.CreatedAt.Year())
}

func TestWidgetGetNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewWidgetRepository(db)

	query := fmt.Sprintf("SELECT %s FROM %s WHERE customer_id = ? AND id = ? LIMIT 1",
		widgetColumns, constants.TableWidget)

	mock.ExpectQuery(regexp.QuoteMeta(query)).WithArgs("cust-1", "missing").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	w, err := repo.Get(context.Background(), "cust-1", "missing")
	assert.NoError(t, err)
	assert.Nil(t, w)
}

func TestWidgetListHidesAdminBucket(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewWidgetRepository(db)

	query := fmt.Sprintf("SELECT %s FROM %s WHERE customer_id = ? AND visibility = ? ORDER BY last_modified_date DESC",
		widgetColumns, constants.TableWidget)

	rows := sqlmock.NewRows([]string{"id", "customer_id", "name", "description", "config",
		"visibility", "dashboard_id", "section", "created_by_id", "created_date", "last_modified_date"}).
		AddRow("widget-1", "cust-1", "Shared widget", nil, `{"chartType":"pie"}`,
			constants.VisibilityShared, nil, nil, "user-1",
			[]byte("2026-08-01 10:00:00"), []byte("2026-08-01 10:00:00"))

	mock.ExpectQuery(regexp.QuoteMeta(query)).WithArgs("cust-1", constants.VisibilityShared).WillReturnRows(rows)

	widgets, err := repo.List(context.Background(), "cust-1", false)
	require.NoError(t, err)
	require.Len(t, widgets, 1)
	assert.Equal(t, constants.VisibilityShared, widgets[0].Visibility)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWidgetListAdminSeesAll(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewWidgetRepository(db)

	query := fmt.Sprintf("SELECT %s FROM %s WHERE customer_id = ? ORDER BY last_modified_date DESC",
		widgetColumns, constants.TableWidget)

	rows := sqlmock.NewRows([]string{"id", "customer_id", "name", "description", "config",
		"visibility", "dashboard_id", "section", "created_by_id", "created_date", "last_modified_date"}).
		AddRow("widget-1", "cust-1", "Shared widget", nil, `{"chartType":"pie"}`,
			constants.VisibilityShared, nil, nil, "user-1",
			[]byte("2026-08-01 10:00:00"), []byte("2026-08-01 10:00:00")).
		AddRow("widget-2", "cust-1", "Margin widget", "admin only", `{"chartType":"kpi"}`,
			constants.VisibilityAdmin, "dash-1", "finance", "user-2",
			[]byte("2026-08-02 10:00:00"), []byte("2026-08-02 10:00:00"))

	mock.ExpectQuery(regexp.QuoteMeta(query)).WithArgs("cust-1").WillReturnRows(rows)

	widgets, err := repo.List(context.Background(), "cust-1", true)
	require.NoError(t, err)
	require.Len(t, widgets, 2)
	assert.Equal(t, constants.VisibilityAdmin, widgets[1].Visibility)
	assert.Equal(t, "dash-1", widgets[1].DashboardID)
	assert.Equal(t, "finance", widgets[1].Section)
}

func TestWidgetGetCorruptConfig(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewWidgetRepository(db)

	query := fmt.Sprintf("SELECT %s FROM %s WHERE customer_id = ? AND id = ? LIMIT 1",
		widgetColumns, constants.TableWidget)

	rows := sqlmock.NewRows([]string{"id", "customer_id", "name", "description", "config",
		"visibility", "dashboard_id", "section", "created_by_id", "created_date", "last_modified_date"}).
		AddRow("widget-1", "cust-1", "Broken", nil, "{not json",
			constants.VisibilityShared, nil, nil, "user-1",
			[]byte("2026-08-01 10:00:00"), []byte("2026-08-01 10:00:00"))

	mock.ExpectQuery(regexp.QuoteMeta(query)).WithArgs("cust-1", "widget-1").WillReturnRows(rows)

	w, err := repo.Get(context.Background(), "cust-1", "widget-1")
	assert.Error(t, err)
	assert.Nil(t, w)
}
