package match

import (
	"github.com/huandu/skiplist"
)

type priceUnit struct {
	totalSize uint64
	head      *Order
	tail      *Order
	count     int64
}

type DepthItem struct {
	ID    uint32 `json:"id"`
	Price uint64 `json:"price"`
	Size  uint64 `json:"size"`
	Count int64  `json:"count"`
}

// queue holds the resting orders of one side, ordered by price priority and
// then by arrival.
type queue struct {
	side        Side
	totalOrders int64
	depths      int64
	depthList   *skiplist.SkipList
	priceList   map[uint64]*skiplist.Element
}

// NewBuyerQueue creates a new queue for buy orders (bids).
// The orders are sorted by price in descending order (highest price first).
func NewBuyerQueue() *queue {
	return &queue{
		side: Buy,
		depthList: skiplist.New(skiplist.GreaterThanFunc(func(lhs, rhs any) int {
			p1, _ := lhs.(uint64)
			p2, _ := rhs.(uint64)

			if p1 < p2 {
				return 1
			} else if p1 > p2 {
				return -1
			}

			return 0
		})),
		priceList: make(map[uint64]*skiplist.Element),
	}
}

// NewSellerQueue creates a new queue for sell orders (asks).
// The orders are sorted by price in ascending order (lowest price first).
func NewSellerQueue() *queue {
	return &queue{
		side: Sell,
		depthList: skiplist.New(skiplist.GreaterThanFunc(func(lhs, rhs any) int {
			p1, _ := lhs.(uint64)
			p2, _ := rhs.(uint64)

			if p1 > p2 {
				return 1
			} else if p1 < p2 {
				return -1
			}

			return 0
		})),
		priceList: make(map[uint64]*skiplist.Element),
	}
}

// pushBack appends an order behind every order resting at its price.
// It updates the price list and depth list.
func (q *queue) pushBack(order *Order) {
	order.next = nil
	order.prev = nil

	el, ok := q.priceList[order.Price]
	if !ok {
		unit := &priceUnit{
			head:      order,
			tail:      order,
			totalSize: order.Quantity,
			count:     1,
		}
		q.priceList[order.Price] = q.depthList.Set(order.Price, unit)
		q.totalOrders++
		q.depths++
		return
	}

	unit, _ := el.Value.(*priceUnit)
	order.prev = unit.tail
	if unit.tail != nil {
		unit.tail.next = order
	}
	unit.tail = order
	if unit.head == nil {
		unit.head = order
	}

	unit.totalSize += order.Quantity
	unit.count++
	q.totalOrders++
}

// removeOrder unlinks an order from its price level.
// It also cleans up the price unit if it becomes empty.
func (q *queue) removeOrder(order *Order) {
	skipElement, ok := q.priceList[order.Price]
	if !ok {
		return
	}
	unit, _ := skipElement.Value.(*priceUnit)

	// Remove from linked list
	if order.prev != nil {
		order.prev.next = order.next
	} else {
		unit.head = order.next
	}

	if order.next != nil {
		order.next.prev = order.prev
	} else {
		unit.tail = order.prev
	}

	order.next = nil
	order.prev = nil

	unit.totalSize -= order.Quantity
	unit.count--
	q.totalOrders--

	if unit.count == 0 {
		q.depthList.RemoveElement(skipElement)
		delete(q.priceList, order.Price)
		q.depths--
	}
}

// fill reduces a resting order by qty in place, keeping its priority.
// The order is removed once nothing remains. qty must not exceed the order's quantity.
func (q *queue) fill(order *Order, qty uint64) {
	if qty >= order.Quantity {
		q.removeOrder(order)
		order.Quantity = 0
		return
	}

	if el, ok := q.priceList[order.Price]; ok {
		unit, _ := el.Value.(*priceUnit)
		unit.totalSize -= qty
	}
	order.Quantity -= qty
}

// peekHeadOrder returns the order at the front of the queue (best price) without removing it.
func (q *queue) peekHeadOrder() *Order {
	el := q.depthList.Front()
	if el == nil {
		return nil
	}

	unit, _ := el.Value.(*priceUnit)
	return unit.head
}

// orderCount returns the total number of orders in the queue.
func (q *queue) orderCount() int64 {
	return q.totalOrders
}

// depthCount returns the number of price levels in the queue.
func (q *queue) depthCount() int64 {
	return q.depths
}

// toSnapshot copies the queue into a slice in priority order.
// It iterates through the skip list (price levels) and then the linked list (orders).
func (q *queue) toSnapshot() []Order {
	snapshots := make([]Order, 0, q.totalOrders)

	elem := q.depthList.Front()
	for elem != nil {
		unit := elem.Value.(*priceUnit)

		for order := unit.head; order != nil; order = order.next {
			snapshots = append(snapshots, order.clone())
		}

		elem = elem.Next()
	}

	return snapshots
}

// depth returns the order book depth up to the specified limit.
func (q *queue) depth(limit uint32) []*DepthItem {
	result := make([]*DepthItem, 0, limit)

	el := q.depthList.Front()

	var i uint32 = 0
	for i < limit && el != nil {
		unit, _ := el.Value.(*priceUnit)
		result = append(result, &DepthItem{
			ID:    i,
			Price: unit.head.Price,
			Size:  unit.totalSize,
			Count: unit.count,
		})

		el = el.Next()
		i++
	}

	return result
}
