package entity

type Order string

const (
	OrderAsc  Order = "asc"
	OrderDesc Order = "desc"
)

const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// ListOptions is a rank-based window over the time-ordered index.
type ListOptions struct {
	Limit  int
	Offset int
	Order  Order
}

// Normalize applies the list defaults: limit in (0, 100], offset >= 0, desc order.
func (o ListOptions) Normalize() ListOptions {
	if o.Limit <= 0 {
		o.Limit = DefaultListLimit
	}
	if o.Limit > MaxListLimit {
		o.Limit = MaxListLimit
	}
	if o.Offset < 0 {
		o.Offset = 0
	}
	if o.Order != OrderAsc {
		o.Order = OrderDesc
	}

	return o
}
