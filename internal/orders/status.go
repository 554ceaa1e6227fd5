package orders

import (
	"fmt"

	"github.com/amicofritto/orders-backend/pkg/enums"
	"github.com/amicofritto/orders-backend/pkg/fcm"
)

var statusRank = map[enums.OrderStatus]int{
	enums.OrderStatusPending:   0,
	enums.OrderStatusConfirmed: 1,
	enums.OrderStatusPreparing: 2,
	enums.OrderStatusReady:     3,
	enums.OrderStatusCompleted: 4,
}

// CanTransition reports whether an order may move between two statuses.
// The canonical path is pending, confirmed, preparing, ready, completed.
// Staff may jump ahead but never backward; cancelled is reachable from any
// non-terminal state; terminal states accept nothing.
func CanTransition(from, to enums.OrderStatus) bool {
	if !from.IsValid() || !to.IsValid() || from == to {
		return false
	}
	if from.IsTerminal() {
		return false
	}
	if to == enums.OrderStatusCancelled {
		return true
	}
	return statusRank[to] > statusRank[from]
}

type statusText struct {
	title string
	body  func(orderNumber string) string
}

var statusNotifications = map[enums.OrderStatus]statusText{
	enums.OrderStatusConfirmed: {
		title: "Ordine confermato",
		body: func(n string) string {
			return fmt.Sprintf("Il tuo ordine %s è stato confermato. Stiamo iniziando a prepararlo.", n)
		},
	},
	enums.OrderStatusPreparing: {
		title: "Ordine in preparazione",
		body: func(n string) string {
			return fmt.Sprintf("Il tuo ordine %s è in preparazione.", n)
		},
	},
	enums.OrderStatusReady: {
		title: "Ordine pronto",
		body: func(n string) string {
			return fmt.Sprintf("Il rider ha preso l'ordine %s in consegna.", n)
		},
	},
	enums.OrderStatusCompleted: {
		title: "Ordine completato",
		body: func(n string) string {
			return fmt.Sprintf("Il tuo ordine %s è stato completato. Grazie!", n)
		},
	},
	enums.OrderStatusCancelled: {
		title: "Ordine annullato",
		body: func(n string) string {
			return fmt.Sprintf("Il tuo ordine %s è stato annullato.", n)
		},
	},
}

// StatusNotification returns the customer message for a status change.
// No message exists for pending, which is the creation state.
func StatusNotification(status enums.OrderStatus, orderNumber string) (fcm.Message, bool) {
	text, ok := statusNotifications[status]
	if !ok {
		return fcm.Message{}, false
	}
	return fcm.Message{
		Title:       text.title,
		Body:        text.body(orderNumber),
		ClickAction: "/order/" + orderNumber,
		Data: map[string]string{
			"order_number": orderNumber,
			"status":       status.String(),
		},
	}, true
}
