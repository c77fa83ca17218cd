package service

import "classlink/automation/repo/model"

// 配置生命周期状态，由 is_approved/is_active 两个标志推导
type ConfigState int

const (
	StateRequested ConfigState = iota
	StateApprovedInactive
	StateApprovedActive
)

func (s ConfigState) String() string {
	switch s {
	case StateRequested:
		return "requested"
	case StateApprovedInactive:
		return "approved_inactive"
	case StateApprovedActive:
		return "approved_active"
	}
	return "unknown"
}

func StateOf(cfg *model.AutomationConfig) ConfigState {
	if !cfg.IsApproved {
		return StateRequested
	}
	if cfg.IsActive {
		return StateApprovedActive
	}
	return StateApprovedInactive
}

// CanActivate 未审批的配置不允许进入激活态
func (s ConfigState) CanActivate() bool {
	return s != StateRequested
}

// ShouldRoute 只有已审批且激活的配置才触发转发
func (s ConfigState) ShouldRoute() bool {
	return s == StateApprovedActive
}
