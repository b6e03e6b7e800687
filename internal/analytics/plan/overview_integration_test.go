//go:build integration

package plan

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/vfg2006/sales-kpi-api/internal/domain"
	"github.com/vfg2006/sales-kpi-api/pkg/normalize"
)

const postgresImage = "postgres:16-alpine"

// Março: três vendas de um cliente (100 + 200 + 300), duas delas do mesmo produto.
// Abril: uma venda de 300. Não há vendas em fevereiro nem em 2023.
const seedSQL = `
CREATE TABLE movimentacoes (id INT PRIMARY KEY, data DATE NOT NULL, cliente_id INT NOT NULL, filial_id INT NOT NULL);
CREATE TABLE movimentacao_itens (movimentacao_id INT NOT NULL, produto_id INT NOT NULL, valor_total NUMERIC(12,2), quantidade NUMERIC(12,3), litros NUMERIC(12,3));
CREATE TABLE vendas (data DATE NOT NULL, cliente_id INT, cliente_nome TEXT, produto_id INT, produto_nome TEXT, filial_id INT, filial_nome TEXT, valor_total NUMERIC(12,2), quantidade NUMERIC(12,3), litros NUMERIC(12,3), cep TEXT);
CREATE TABLE metas (cliente_id INT, valor_meta NUMERIC(12,2), competencia INT);

INSERT INTO movimentacoes VALUES
	(1, '2024-03-05', 10, 1),
	(2, '2024-03-12', 10, 1),
	(3, '2024-03-20', 10, 1),
	(4, '2024-04-02', 10, 1);
INSERT INTO movimentacao_itens VALUES
	(1, 100, 100.00, 1, 10),
	(2, 100, 200.00, 2, 20),
	(3, 200, 300.00, 3, NULL),
	(4, 100, 300.00, 3, 30);

INSERT INTO vendas VALUES
	('2024-03-05', 10, 'Posto Central', 100, 'Diesel', 1, 'Matriz', 100.00, 1, 10, '01310-100'),
	('2024-03-12', 10, 'Posto Central', 100, 'Diesel', 1, 'Matriz', 200.00, 2, 20, '01310-100'),
	('2024-03-20', 10, 'Posto Central', 200, 'Gasolina', 1, 'Matriz', 300.00, 3, NULL, '01310-100'),
	('2024-04-02', 10, 'Posto Central', 100, 'Diesel', 1, 'Matriz', 300.00, 3, 30, '01310-100');

INSERT INTO metas VALUES (10, 1200.00, 202403);
`

var integrationWindow = domain.DateWindow{Start: date("2024-03-01"), End: date("2024-04-30")}

func startPostgres(t *testing.T) *sql.DB {
	t.Helper()

	if testing.Short() {
		t.Skip("Teste de integração ignorado em modo short (requer Docker)")
	}

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        postgresImage,
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_DB":       "tenant",
				"POSTGRES_USER":     "kpi",
				"POSTGRES_PASSWORD": "kpi",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	testcontainers.CleanupContainer(t, container)
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	db, err := sql.Open("postgres", fmt.Sprintf("postgres://kpi:kpi@%s:%s/tenant?sslmode=disable", host, port.Port()))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	for i := 0; i < 10; i++ {
		if err = db.PingContext(ctx); err == nil {
			break
		}
		time.Sleep(500 * time.Millisecond)
	}
	require.NoError(t, err)

	_, err = db.ExecContext(ctx, seedSQL)
	require.NoError(t, err)

	return db
}

// queryRows devolve as linhas no mesmo formato genérico que o proxy entrega
func queryRows(t *testing.T, db *sql.DB, sqlText string) []map[string]any {
	t.Helper()

	rows, err := db.Query(sqlText)
	require.NoError(t, err, sqlText)
	defer rows.Close()

	columns, err := rows.Columns()
	require.NoError(t, err)

	var result []map[string]any
	for rows.Next() {
		values := make([]any, len(columns))
		pointers := make([]any, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}
		require.NoError(t, rows.Scan(pointers...))

		row := make(map[string]any, len(columns))
		for i, col := range columns {
			row[col] = values[i]
		}
		result = append(result, row)
	}
	require.NoError(t, rows.Err())

	return result
}

func assertNumber(t *testing.T, want float64, v any, field string) {
	t.Helper()
	got := normalize.NullableNumber(v)
	if assert.NotNil(t, got, field) {
		assert.InDelta(t, want, *got, 0.0001, field)
	}
}

func TestMonthlyOverviewSQL_Postgres(t *testing.T) {
	db := startPostgres(t)
	schema := domain.DefaultSalesSchema()

	plans := []struct {
		name string
		caps domain.CapabilitySet
	}{
		{name: "Plano normalizado", caps: normalizedCaps},
		{name: "Plano de fallback", caps: domain.CapabilitySet{}},
	}

	for _, p := range plans {
		t.Run(p.name+" calcula março e abril", func(t *testing.T) {
			sqlText, err := Select(p.caps, schema).MonthlyOverviewSQL(domain.DimensionFilter{}, integrationWindow)
			require.NoError(t, err)

			rows := queryRows(t, db, sqlText)
			require.Len(t, rows, 2)

			march, april := rows[0], rows[1]
			assert.Equal(t, "2024-03", normalize.Month(march["month"]))
			assert.Equal(t, "2024-04", normalize.Month(april["month"]))

			assertNumber(t, 600, march["revenue"], "receita de março")
			assert.Nil(t, normalize.NullableNumber(march["previous_revenue"]), "fevereiro sem vendas")
			assert.Nil(t, normalize.NullableNumber(march["revenue_mom"]))
			assert.Nil(t, normalize.NullableNumber(march["last_year_revenue"]))
			assert.Nil(t, normalize.NullableNumber(march["revenue_yoy"]))
			assertNumber(t, 30, march["volume"], "volume com litros nulos")
			assertNumber(t, 1, march["active_clients"], "clientes ativos")
			assertNumber(t, 600, march["average_ticket"], "ticket médio")
			assertNumber(t, 0.5, march["leading_product_share"], "participação do produto líder")
			assert.Nil(t, normalize.NullableNumber(march["goal_revenue"]))
			assert.Nil(t, normalize.NullableNumber(march["goal_attainment"]))

			assertNumber(t, 300, april["revenue"], "receita de abril")
			assertNumber(t, 600, april["previous_revenue"], "base de abril")
			assertNumber(t, -0.5, april["revenue_mom"], "variação mensal de abril")
			assert.Nil(t, normalize.NullableNumber(april["revenue_yoy"]), "abril de 2023 sem vendas")
			assertNumber(t, 1, april["leading_product_share"], "produto único em abril")
		})
	}

	t.Run("Filtro de cliente sem vendas zera o mês e anula as razões", func(t *testing.T) {
		sqlText, err := Select(normalizedCaps, schema).MonthlyOverviewSQL(domain.DimensionFilter{Clients: []string{"99"}}, integrationWindow)
		require.NoError(t, err)

		rows := queryRows(t, db, sqlText)
		require.Len(t, rows, 2)
		for _, row := range rows {
			assertNumber(t, 0, row["revenue"], "receita")
			assertNumber(t, 0, row["active_clients"], "clientes ativos")
			assert.Nil(t, normalize.NullableNumber(row["average_ticket"]))
			assert.Nil(t, normalize.NullableNumber(row["revenue_mom"]))
			assert.Nil(t, normalize.NullableNumber(row["leading_product_share"]))
		}
	})

	t.Run("Metas somadas por mês e atingimento", func(t *testing.T) {
		sqlText, err := Select(goalCaps, schema).MonthlyOverviewSQL(domain.DimensionFilter{}, integrationWindow)
		require.NoError(t, err)

		rows := queryRows(t, db, sqlText)
		require.Len(t, rows, 2)

		assertNumber(t, 1200, rows[0]["goal_revenue"], "meta de março")
		assertNumber(t, 0.5, rows[0]["goal_attainment"], "atingimento de março")
		assert.Nil(t, normalize.NullableNumber(rows[1]["goal_revenue"]), "abril sem meta")
		assert.Nil(t, normalize.NullableNumber(rows[1]["goal_attainment"]))
	})
}

func TestSalesMovementsSQL_Postgres(t *testing.T) {
	db := startPostgres(t)
	schema := domain.DefaultSalesSchema()

	for _, caps := range []domain.CapabilitySet{normalizedCaps, {}} {
		plan := Select(caps, schema)
		t.Run(plan.Name()+" mantém as movimentações mais recentes no limite", func(t *testing.T) {
			sqlText, err := plan.SalesMovementsSQL(domain.DimensionFilter{}, integrationWindow, 2)
			require.NoError(t, err)

			rows := queryRows(t, db, sqlText)
			require.Len(t, rows, 2)
			assert.Equal(t, "2024-04-02", normalize.String(rows[0]["date"]))
			assert.Equal(t, "2024-03-20", normalize.String(rows[1]["date"]))
		})
	}
}
