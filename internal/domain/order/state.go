package order

// State implements the state pattern for order lifecycle transitions.
type State interface {
	Status() Status
	OnModify(o *Order) error
	OnPay(o *Order) (State, error)
	OnCancel(o *Order) (State, error)
}

func stateFor(s Status) (State, error) {
	switch s {
	case StatusCreated:
		return createdState{}, nil
	case StatusPaid:
		return paidState{}, nil
	case StatusCancelled:
		return cancelledState{}, nil
	default:
		return nil, ErrInvalidStatus
	}
}

type createdState struct{}

func (createdState) Status() Status { return StatusCreated }

func (createdState) OnModify(*Order) error { return nil }

func (createdState) OnPay(o *Order) (State, error) {
	if len(o.lines) == 0 {
		return nil, ErrEmptyOrder
	}
	return paidState{}, nil
}

func (createdState) OnCancel(*Order) (State, error) {
	return cancelledState{}, nil
}

type paidState struct{}

func (paidState) Status() Status { return StatusPaid }

func (paidState) OnModify(*Order) error { return ErrCannotBeModified }

func (paidState) OnPay(o *Order) (State, error) {
	if len(o.lines) == 0 {
		return nil, ErrEmptyOrder
	}
	return nil, ErrAlreadyPaid
}

func (paidState) OnCancel(*Order) (State, error) {
	return nil, ErrCannotCancelPaid
}

type cancelledState struct{}

func (cancelledState) Status() Status { return StatusCancelled }

func (cancelledState) OnModify(*Order) error { return ErrOrderCancelled }

func (cancelledState) OnPay(o *Order) (State, error) {
	if len(o.lines) == 0 {
		return nil, ErrEmptyOrder
	}
	return nil, ErrOrderCancelled
}

// Re-cancelling is a no-op.
func (cancelledState) OnCancel(*Order) (State, error) {
	return cancelledState{}, nil
}
