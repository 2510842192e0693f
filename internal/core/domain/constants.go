package domain

// Side of an order or of a book.
type Side int

const (
	SideBuy Side = iota
	SideSell
)

func (s Side) String() string {
	if s == SideBuy {
		return "buy"
	}
	return "sell"
}

// Opposite returns the side an order of this side matches against.
func (s Side) Opposite() Side {
	if s == SideBuy {
		return SideSell
	}
	return SideBuy
}

// ParseSide parses the wire form of a side.
func ParseSide(raw string) (Side, error) {
	switch raw {
	case "buy":
		return SideBuy, nil
	case "sell":
		return SideSell, nil
	default:
		return 0, ErrInvalidSide
	}
}

// ExecutionType tells how an incoming order is executed.
type ExecutionType int

const (
	// ExecutionMarket takes the single best resting offer, quantity 1.
	ExecutionMarket ExecutionType = iota
	// ExecutionBook crosses the opposite book and rests any remainder.
	ExecutionBook
)

func (e ExecutionType) String() string {
	if e == ExecutionMarket {
		return "market"
	}
	return "book"
}

// ParseExecutionType parses the wire form of an execution type.
func ParseExecutionType(raw string) (ExecutionType, error) {
	switch raw {
	case "market":
		return ExecutionMarket, nil
	case "book":
		return ExecutionBook, nil
	default:
		return 0, ErrInvalidExecutionType
	}
}
