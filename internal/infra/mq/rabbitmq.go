package mq

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/example/homekitchen/internal/config"
	"github.com/example/homekitchen/internal/datamodels/order"
)

var (
	conn *amqp.Connection
	once sync.Once
)

// Init 初始化 RabbitMQ 连接。通知是尽力而为的旁路，连不上只告警不退出
func Init(cfg *config.RabbitMQConfig) *amqp.Connection {
	once.Do(func() {
		if cfg.URL == "" {
			return
		}
		c, err := amqp.Dial(cfg.URL)
		if err != nil {
			zap.L().Warn("rabbitmq unavailable, order notification disabled", zap.Error(err))
			return
		}
		conn = c
	})
	return conn
}

// Conn 获取 MQ 连接，可能为 nil
func Conn() *amqp.Connection {
	return conn
}

const notifyQueue = "order_notify"

// OrderEvent 订单通知消息体
type OrderEvent struct {
	Event       string       `json:"event"` // created / accepted / completed
	OrderID     string       `json:"orderId"`
	KitchenID   string       `json:"kitchenId"`
	KitchenName string       `json:"kitchenName"`
	TotalPrice  float64      `json:"totalPrice"`
	Status      order.Status `json:"status"`
	OccurredAt  string       `json:"occurredAt"`
}

// Notifier 把订单事件投递到 MQ。发布失败只记日志，绝不影响本地下单流程
type Notifier struct {
	conn *amqp.Connection
}

// NewNotifier 创建通知器，conn 为 nil 时所有通知直接丢弃
func NewNotifier(conn *amqp.Connection) *Notifier {
	return &Notifier{conn: conn}
}

// NotifyOrder 投递一条订单事件
func (n *Notifier) NotifyOrder(event string, o *order.Order) {
	if n == nil || n.conn == nil || o == nil {
		return
	}
	go n.publish(event, o)
}

func (n *Notifier) publish(event string, o *order.Order) {
	ch, err := n.conn.Channel()
	if err != nil {
		zap.L().Warn("order notify: open channel failed", zap.Error(err))
		return
	}
	defer ch.Close()

	if _, err = ch.QueueDeclare(notifyQueue, true, false, false, false, nil); err != nil {
		zap.L().Warn("order notify: declare queue failed", zap.Error(err))
		return
	}

	body, err := json.Marshal(&OrderEvent{
		Event:       event,
		OrderID:     o.ID,
		KitchenID:   o.KitchenID,
		KitchenName: o.KitchenName,
		TotalPrice:  o.TotalPrice,
		Status:      o.Status,
		OccurredAt:  time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err = ch.PublishWithContext(
		ctx,
		"",
		notifyQueue,
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
	if err != nil {
		zap.L().Warn("order notify: publish failed", zap.String("order", o.ID), zap.Error(err))
	}
}
