package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/homekitchen/internal/datamodels/order"
	"github.com/example/homekitchen/internal/datamodels/user"
	"github.com/example/homekitchen/internal/errs"
)

// recordingNotifier 记录收到的订单事件
type recordingNotifier struct {
	mu     sync.Mutex
	events []string
}

func (n *recordingNotifier) NotifyOrder(event string, _ *order.Order) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
}

func (n *recordingNotifier) snapshot() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.events...)
}

func (e *testEnv) placeOrder(t *testing.T, admin *user.Profile, name string, price float64) *order.Order {
	t.Helper()
	ctx := context.Background()
	r := e.addRecipe(t, name, "cat_001", price, admin)
	_, err := e.cart.AddItem(ctx, r.ID)
	require.NoError(t, err)
	o, err := e.cart.Checkout(ctx, "")
	require.NoError(t, err)
	return o
}

func TestOrderHappyPath(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.becomeAdmin(t, "Alice", "open_alice")
	o := env.placeOrder(t, admin, "红烧排骨", 36)

	accepted, err := env.orders.Accept(ctx, o.ID, admin)
	require.NoError(t, err)
	assert.Equal(t, order.StatusProcessing, accepted.Status)

	completed, err := env.orders.Complete(ctx, o.ID, admin)
	require.NoError(t, err)
	assert.Equal(t, order.StatusCompleted, completed.Status)
}

func TestOrderInvalidTransition(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.becomeAdmin(t, "Alice", "open_alice")
	o := env.placeOrder(t, admin, "清蒸鲈鱼", 58)

	// pending 不能直接出餐
	_, err := env.orders.Complete(ctx, o.ID, admin)
	assert.ErrorIs(t, err, errs.ErrInvalidTransition)

	got, err := env.orders.Get(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusPending, got.Status, "失败的流转不应改动订单")

	// completed 是终态
	_, err = env.orders.Accept(ctx, o.ID, admin)
	require.NoError(t, err)
	_, err = env.orders.Complete(ctx, o.ID, admin)
	require.NoError(t, err)
	_, err = env.orders.Accept(ctx, o.ID, admin)
	assert.ErrorIs(t, err, errs.ErrInvalidTransition)
}

func TestOrderTransitionRequiresAdmin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.becomeAdmin(t, "Alice", "open_alice")
	o := env.placeOrder(t, admin, "油焖大虾", 68)

	bob := &user.Profile{NickName: "Bob", OpenID: "open_bob"}
	_, err := env.orders.Accept(ctx, o.ID, bob)
	assert.ErrorIs(t, err, errs.ErrPermission)
}

func TestOrderListFilterAndOrder(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	sp, err := env.registry.GetOrInitShop(ctx)
	require.NoError(t, err)
	kid := sp.CurrentKitchenID

	seed := []order.Order{
		{ID: "o_old", KitchenID: kid, Status: order.StatusPending, CreateTime: "2026-08-01T08:00:00.000Z"},
		{ID: "o_new", KitchenID: kid, Status: order.StatusPending, CreateTime: "2026-08-02T08:00:00.000Z"},
		{ID: "o_done", KitchenID: kid, Status: order.StatusCompleted, CreateTime: "2026-08-03T08:00:00.000Z"},
		{ID: "o_bad", KitchenID: kid, Status: order.StatusPending, CreateTime: "昨天"},
		{ID: "o_other", KitchenID: "kitchen_zzz", Status: order.StatusPending, CreateTime: "2026-08-04T08:00:00.000Z"},
	}
	require.NoError(t, env.store.Set("orders", seed))

	list, err := env.orders.List(ctx, "all")
	require.NoError(t, err)
	require.Len(t, list, 4, "其他厨房的订单不可见")

	// 可解析的时间倒序，坏时间戳不让排序崩
	assert.Equal(t, "o_done", list[0].ID)
	assert.Equal(t, "o_new", list[1].ID)

	pending, err := env.orders.List(ctx, "pending")
	require.NoError(t, err)
	require.Len(t, pending, 3)
	for _, o := range pending {
		assert.Equal(t, order.StatusPending, o.Status)
	}

	_, err = env.orders.List(ctx, "")
	require.NoError(t, err)
}

func TestOrderDeleteOnlyCompleted(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.becomeAdmin(t, "Alice", "open_alice")
	o := env.placeOrder(t, admin, "地三鲜", 18)

	err := env.orders.Delete(ctx, o.ID, admin)
	assert.ErrorIs(t, err, errs.ErrInvalidTransition)

	_, err = env.orders.Accept(ctx, o.ID, admin)
	require.NoError(t, err)
	_, err = env.orders.Complete(ctx, o.ID, admin)
	require.NoError(t, err)

	require.NoError(t, env.orders.Delete(ctx, o.ID, admin))
	_, err = env.orders.Get(ctx, o.ID)
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestOrderNotificationRespectsSetting(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.becomeAdmin(t, "Alice", "open_alice")

	n := &recordingNotifier{}
	env.orders.notifier = n

	env.placeOrder(t, admin, "通知菜", 10)
	assert.Equal(t, []string{"created"}, n.snapshot())

	// 关掉通知开关后不再投递
	require.NoError(t, env.settings.SetNotification(ctx, false))
	env.placeOrder(t, admin, "静音菜", 10)
	assert.Equal(t, []string{"created"}, n.snapshot())
}
