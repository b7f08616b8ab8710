package events

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Jestinxavier/infant-care-bknt-sub003/internal/models"
	"github.com/Jestinxavier/infant-care-bknt-sub003/internal/services"
)

const orderPlacedChannel = "events:order_placed"

// Publisher - Diffuse les événements de commande : publication Redis pour les
// consommateurs temps réel (mails, notifications) et indexation Elasticsearch
// pour la recherche back-office. Tout est best-effort, jamais bloquant pour
// la réponse HTTP.
type Publisher struct {
	rdb *redis.Client
}

func NewPublisher(rdb *redis.Client) *Publisher {
	return &Publisher{rdb: rdb}
}

type orderPlacedEvent struct {
	OrderID     string    `json:"orderId"`
	OrderNumber string    `json:"orderNumber"`
	UserID      string    `json:"userId"`
	AmountTotal float64   `json:"amountTotal"`
	Status      string    `json:"status"`
	PlacedAt    time.Time `json:"placedAt"`
}

func (p *Publisher) OrderPlaced(order *models.Order) {
	go services.IndexOrder(*order)

	if p.rdb == nil {
		return
	}

	evt := orderPlacedEvent{
		OrderID:     order.ID.Hex(),
		OrderNumber: order.OrderNumber,
		UserID:      order.UserID,
		AmountTotal: order.AmountTotal,
		Status:      order.Status,
		PlacedAt:    order.CreatedAt,
	}

	data, err := json.Marshal(evt)
	if err != nil {
		log.Printf("⚠️ Événement commande non sérialisé: %v", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := p.rdb.Publish(ctx, orderPlacedChannel, data).Err(); err != nil {
		log.Printf("⚠️ Publication Redis échouée pour %s: %v", order.OrderNumber, err)
		return
	}
	log.Printf("📣 Événement publié: commande %s", order.OrderNumber)
}
