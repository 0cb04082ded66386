package pgitems

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/BearBump/PriceBox/internal/models"
)

func TestPGItems_RepoFlow(t *testing.T) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:15-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "admin",
			"POSTGRES_PASSWORD": "admin",
			"POSTGRES_DB":       "pricebox_test",
		},
		WaitingFor: wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	pgC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	host, err := pgC.Host(ctx)
	require.NoError(t, err)
	port, err := pgC.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	dsn := "postgres://admin:admin@" + host + ":" + port.Port() + "/pricebox_test?sslmode=disable"
	st, err := New(dsn)
	require.NoError(t, err)
	t.Cleanup(st.Close)

	created, err := st.CreateOrGetItems(ctx, []models.ItemCreateInput{
		{JAN: 4571245296405},
		{JAN: 4580416940283},
	})
	require.NoError(t, err)
	require.Len(t, created, 2)
	require.NotZero(t, created[0].ID)

	// повторное создание того же JAN возвращает существующий товар
	again, err := st.CreateOrGetItems(ctx, []models.ItemCreateInput{{JAN: 4571245296405}})
	require.NoError(t, err)
	require.Len(t, again, 1)
	require.Equal(t, created[0].ID, again[0].ID)

	byJAN, err := st.GetItemByJAN(ctx, 4571245296405)
	require.NoError(t, err)
	require.NotNil(t, byJAN)
	require.Equal(t, created[0].ID, byJAN.ID)

	missing, err := st.GetItemByJAN(ctx, 1)
	require.NoError(t, err)
	require.Nil(t, missing)

	// детали товара
	byJAN.Description = "Nendoroid Example"
	byJAN.TermEN = "nendoroid example"
	byJAN.Image = "https://img.example/1.jpg"
	require.NoError(t, st.UpdateItemDetails(ctx, byJAN))

	active, err := st.ListActiveItems(ctx)
	require.NoError(t, err)
	require.Len(t, active, 2)

	require.NoError(t, st.SetItemDisabled(ctx, created[1].ID, true))
	active, err = st.ListActiveItems(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)

	// история цен пока пуста: оба запроса отвечают nil без ошибки
	lowest, err := st.LowestPrice(ctx, created[0].ID)
	require.NoError(t, err)
	require.Nil(t, lowest)

	before, err := st.LowestPriceBefore(ctx, created[0].ID, time.Now().UTC())
	require.NoError(t, err)
	require.Nil(t, before)

	// два наблюдения в разные моменты
	t0 := time.Now().UTC().Add(-time.Hour).Truncate(time.Millisecond)
	t1 := t0.Add(30 * time.Minute)

	p0 := &models.Price{
		ItemID: created[0].ID, Amount: 16000, Currency: "JPY",
		ConvertedAmount: 100, ConvertedCurrency: "EUR",
		Module: "amiami", Condition: models.ItemConditionNew, ObservedAt: t0,
	}
	require.NoError(t, st.AddPrice(ctx, p0))
	require.NotZero(t, p0.ID)

	p1 := &models.Price{
		ItemID: created[0].ID, Amount: 13600, Currency: "JPY",
		ConvertedAmount: 85, ConvertedCurrency: "EUR",
		Module: "amiami", Condition: models.ItemConditionNew, ObservedAt: t1,
	}
	require.NoError(t, st.AddPrice(ctx, p1))

	// дубликат наблюдения не падает и не создаёт строку
	dup := &models.Price{
		ItemID: created[0].ID, Amount: 16000, Currency: "JPY",
		ConvertedAmount: 100, ConvertedCurrency: "EUR",
		Module: "amiami", Condition: models.ItemConditionNew, ObservedAt: t0,
	}
	require.NoError(t, st.AddPrice(ctx, dup))

	all, err := st.ListPrices(ctx, created[0].ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, all, 2)
	// сортировка по observed_at DESC
	require.WithinDuration(t, t1, all[0].ObservedAt, time.Second)

	lowest, err = st.LowestPrice(ctx, created[0].ID)
	require.NoError(t, err)
	require.NotNil(t, lowest)
	require.InDelta(t, 85.0, lowest.ConvertedAmount, 1e-9)

	before, err = st.LowestPriceBefore(ctx, created[0].ID, t1)
	require.NoError(t, err)
	require.NotNil(t, before)
	require.InDelta(t, 100.0, before.ConvertedAmount, 1e-9)

	// условия
	cond := &models.Condition{ItemID: created[0].ID, Type: models.ConditionBelowPrice, ItemCondition: models.ItemConditionAll, Value: 90}
	require.NoError(t, st.AddCondition(ctx, cond))
	require.NotZero(t, cond.ID)

	conds, err := st.ListEnabledConditions(ctx, created[0].ID)
	require.NoError(t, err)
	require.Len(t, conds, 1)

	require.NoError(t, st.SetConditionDisabled(ctx, cond.ID, true))
	conds, err = st.ListEnabledConditions(ctx, created[0].ID)
	require.NoError(t, err)
	require.Empty(t, conds)
}
