package enums

// LifecycleStage is the coarse engagement classification of a customer.
// It is derived from current order/contact counts on every query and is
// never persisted.
type LifecycleStage string

const (
	LifecycleStageProspect LifecycleStage = "prospect"
	LifecycleStageLead     LifecycleStage = "lead"
	LifecycleStageActive   LifecycleStage = "active"
	LifecycleStageVIP      LifecycleStage = "vip"
)

// String implements fmt.Stringer.
func (s LifecycleStage) String() string {
	return string(s)
}
