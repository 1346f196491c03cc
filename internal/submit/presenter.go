package submit

// State is the controller's position in the submission lifecycle.
type State string

const (
	StateReady     State = "ready"
	StatePending   State = "pending"
	StateSucceeded State = "succeeded"
	StateFailed    State = "failed"
)

// Category is the semantic kind of the visible message. The rendering
// layer decides the visual treatment.
type Category string

const (
	CategoryNeutral Category = "neutral"
	CategorySuccess Category = "success"
	CategoryFailure Category = "failure"
)

// Trigger labels.
const (
	DefaultTriggerLabel    = "Pay Now"
	ProcessingTriggerLabel = "Processing..."
)

// View is the complete presentation of the form control at one instant:
// the trigger state and the single visible message.
type View struct {
	TriggerEnabled bool
	TriggerLabel   string
	Message        string
	Category       Category
}

// Presenter consumes views. Implementations own the actual surface
// (terminal, DOM bridge, test recorder).
type Presenter interface {
	Present(v View)
}

// Render maps a controller state and message to a View. Pure function; all
// presentation decisions live here rather than scattered around the
// controller. Only the pending state disables the trigger.
func Render(state State, message string) View {
	switch state {
	case StatePending:
		return View{TriggerEnabled: false, TriggerLabel: ProcessingTriggerLabel, Message: message, Category: CategoryNeutral}
	case StateSucceeded:
		return View{TriggerEnabled: true, TriggerLabel: DefaultTriggerLabel, Message: message, Category: CategorySuccess}
	case StateFailed:
		return View{TriggerEnabled: true, TriggerLabel: DefaultTriggerLabel, Message: message, Category: CategoryFailure}
	default:
		return View{TriggerEnabled: true, TriggerLabel: DefaultTriggerLabel, Message: message, Category: CategoryNeutral}
	}
}
