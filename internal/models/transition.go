package models

// CheckCompletion decides whether completion c may be applied to the order snapshot o.
// It returns true when o is CREATED or PENDING, false when o is already COMPLETED
// with the same amount (a repeated notification), an IntegrityError on amount
// mismatch and a TransitionError when o already failed or was cancelled.
func (o *Order) CheckCompletion(c Completion) (bool, error) {
	if o.AmountMinor != c.AmountMinor {
		return false, &IntegrityError{
			MerchantOrderID: o.MerchantOrderID,
			RecordedMinor:   o.AmountMinor,
			ReportedMinor:   c.AmountMinor,
		}
	}

	switch o.State {
	case OrderStateCreated, OrderStatePending:
		return true, nil
	case OrderStateCompleted:
		return false, nil
	default:
		return false, &TransitionError{MerchantOrderID: o.MerchantOrderID, From: o.State, To: OrderStateCompleted}
	}
}

// CheckTermination decides whether o may move to the FAILED or CANCELLED state to.
// Terminal orders yield false without error.
func (o *Order) CheckTermination(to OrderState) (bool, error) {
	if to != OrderStateFailed && to != OrderStateCancelled {
		return false, &TransitionError{MerchantOrderID: o.MerchantOrderID, From: o.State, To: to}
	}
	return !o.State.IsTerminal(), nil
}
