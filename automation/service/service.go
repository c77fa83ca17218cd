package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"classlink/automation/repo"
	"classlink/automation/repo/model"
	chatrepo "classlink/chat/repo"
	chatmodel "classlink/chat/repo/model"
	classrepo "classlink/class/repo"

	"go.uber.org/zap"
)

var (
	ErrTargetClassesRequired = errors.New("target classes are required")
	ErrKeywordRequired       = errors.New("keyword is required")
)

// CommandResult 命令处理结果，失败时 Message 给出具体原因
type CommandResult struct {
	OK      bool   `json:"success"`
	Message string `json:"message"`
	Active  bool   `json:"active"`
}

// Delivery 一次转发中单个班级代表的投递记录
type Delivery struct {
	CRID      int64  `json:"cr_id"`
	CRName    string `json:"cr_name"`
	ChatID    int64  `json:"chat_id"`
	MessageID int64  `json:"message_id"`
}

// RoutingOutcome 一次转发的完整结果，不落库
type RoutingOutcome struct {
	Automated bool       `json:"automated"`
	Error     string     `json:"error,omitempty"`
	SentTo    []Delivery `json:"sent_to,omitempty"`
	TotalCRs  int        `json:"total_crs,omitempty"`
}

// ConfigWithTargets 教师当前配置及其目标班级
type ConfigWithTargets struct {
	*model.AutomationConfig
	State         string  `json:"state"`
	TargetClasses []int64 `json:"target_classes"`
}

type AutomationService struct {
	repo    repo.AutomationRepo
	classes classrepo.ClassRepo
	chats   chatrepo.ChatRepo
	logger  *zap.Logger
}

func NewAutomationService(r repo.AutomationRepo, cl classrepo.ClassRepo, ch chatrepo.ChatRepo, logger *zap.Logger) *AutomationService {
	return &AutomationService{
		repo:    r,
		classes: cl,
		chats:   ch,
		logger:  logger,
	}
}

// IsCommand 判断文本是否为 start/stop 命令
func IsCommand(text string) bool {
	t := strings.ToLower(strings.TrimSpace(text))
	return t == "start" || t == "stop"
}

func (s *AutomationService) RequestAutomation(ctx context.Context, teacherID int64, targetClassIDs []int64) (int64, error) {
	if len(targetClassIDs) == 0 {
		return 0, ErrTargetClassesRequired
	}
	automationID, err := s.repo.CreateConfig(ctx, teacherID)
	if err != nil {
		return 0, fmt.Errorf("fail to create automation config: %w", err)
	}
	if err := s.repo.SetTargetClasses(ctx, automationID, targetClassIDs); err != nil {
		return 0, fmt.Errorf("fail to set target classes: %w", err)
	}
	return automationID, nil
}

func (s *AutomationService) GetPendingApprovals(ctx context.Context) ([]*repo.PendingApproval, error) {
	requests, err := s.repo.GetPendingApprovals(ctx)
	if err != nil {
		return nil, fmt.Errorf("fail to list pending approvals: %w", err)
	}
	return requests, nil
}

func (s *AutomationService) Approve(ctx context.Context, automationID, adminID int64) error {
	if err := s.repo.Approve(ctx, automationID, adminID); err != nil {
		return fmt.Errorf("fail to approve automation %d: %w", automationID, err)
	}
	return nil
}

func (s *AutomationService) GetTeacherConfig(ctx context.Context, teacherID int64) (*ConfigWithTargets, error) {
	cfg, err := s.repo.GetTeacherConfig(ctx, teacherID)
	if err != nil {
		return nil, fmt.Errorf("fail to get teacher config: %w", err)
	}
	if cfg == nil {
		return nil, nil
	}
	targets, err := s.repo.GetTargetClasses(ctx, cfg.ID)
	if err != nil {
		return nil, fmt.Errorf("fail to get target classes: %w", err)
	}
	return &ConfigWithTargets{
		AutomationConfig: cfg,
		State:            StateOf(cfg).String(),
		TargetClasses:    targets,
	}, nil
}

func (s *AutomationService) GetKeywords(ctx context.Context) ([]string, error) {
	keywords, err := s.repo.GetKeywords(ctx)
	if err != nil {
		return nil, fmt.Errorf("fail to get keywords: %w", err)
	}
	return keywords, nil
}

func (s *AutomationService) AddKeyword(ctx context.Context, keyword string) error {
	if strings.TrimSpace(keyword) == "" {
		return ErrKeywordRequired
	}
	if err := s.repo.AddKeyword(ctx, keyword); err != nil {
		return fmt.Errorf("fail to add keyword: %w", err)
	}
	return nil
}

// HandleCommand 处理 start/stop 命令。命令重复下发是幂等的成功。
// 失败路径不做任何写入。
func (s *AutomationService) HandleCommand(ctx context.Context, teacherID int64, raw string) (*CommandResult, error) {
	cfg, err := s.repo.GetTeacherConfig(ctx, teacherID)
	if err != nil {
		return nil, fmt.Errorf("fail to get teacher config: %w", err)
	}
	if cfg == nil {
		return &CommandResult{OK: false, Message: "No automation configuration found. Please request automation first."}, nil
	}
	if !StateOf(cfg).CanActivate() {
		return &CommandResult{OK: false, Message: "Automation not approved by admin yet."}, nil
	}

	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "start":
		if err := s.repo.SetActive(ctx, cfg.ID, true); err != nil {
			return nil, fmt.Errorf("fail to activate automation: %w", err)
		}
		return &CommandResult{OK: true, Message: "Automation started", Active: true}, nil
	case "stop":
		if err := s.repo.SetActive(ctx, cfg.ID, false); err != nil {
			return nil, fmt.Errorf("fail to deactivate automation: %w", err)
		}
		return &CommandResult{OK: true, Message: "Automation stopped", Active: false}, nil
	}
	return &CommandResult{OK: false, Message: "Invalid command"}, nil
}

// HandleTeacherMessage 教师发出的每条普通单聊消息都会经过这里。
// 检查顺序：配置状态 -> 关键词 -> 目标班级 -> 班级代表，任何一步不满足
// 都直接返回未转发，没有副作用。
func (s *AutomationService) HandleTeacherMessage(ctx context.Context, teacherID int64, content string) (*RoutingOutcome, error) {
	cfg, err := s.repo.GetTeacherConfig(ctx, teacherID)
	if err != nil {
		return nil, fmt.Errorf("fail to get teacher config: %w", err)
	}
	if cfg == nil || !StateOf(cfg).ShouldRoute() {
		return &RoutingOutcome{Automated: false}, nil
	}

	keywords, err := s.repo.GetKeywords(ctx)
	if err != nil {
		return nil, fmt.Errorf("fail to get keywords: %w", err)
	}
	if !DetectIntent(content, keywords) {
		return &RoutingOutcome{Automated: false}, nil
	}

	targetClasses, err := s.repo.GetTargetClasses(ctx, cfg.ID)
	if err != nil {
		return nil, fmt.Errorf("fail to get target classes: %w", err)
	}
	if len(targetClasses) == 0 {
		return &RoutingOutcome{Automated: false, Error: "No target classes configured"}, nil
	}

	return s.routeAutomatedMessage(ctx, teacherID, content, targetClasses)
}

// routeAutomatedMessage 把一条消息扇出成每个班级代表一条单聊消息。
// 单个代表失败只跳过该代表，不中断其余投递。
func (s *AutomationService) routeAutomatedMessage(ctx context.Context, teacherID int64, content string, targetClassIDs []int64) (*RoutingOutcome, error) {
	crs, err := s.classes.GetAllCRs(ctx, targetClassIDs)
	if err != nil {
		return nil, fmt.Errorf("fail to resolve CRs: %w", err)
	}
	if len(crs) == 0 {
		return &RoutingOutcome{Automated: false, Error: "No CRs found for selected classes"}, nil
	}

	sentTo := make([]Delivery, 0, len(crs))
	seen := make(map[int64]bool, len(crs))
	for _, cr := range crs {
		if seen[cr.ID] {
			continue
		}
		seen[cr.ID] = true

		chat, err := s.chats.GetOrCreateChat(ctx, teacherID, cr.ID)
		if err != nil {
			s.logger.Warn("fail to resolve chat for CR, skipping",
				zap.Int64("teacher_id", teacherID),
				zap.Int64("cr_id", cr.ID),
				zap.Error(err))
			continue
		}
		msg := &chatmodel.Message{
			SenderID:    teacherID,
			ChatID:      &chat.ID,
			Content:     content,
			MessageType: chatmodel.TypeText,
			IsAutomated: true,
		}
		if err := s.chats.CreateMessage(ctx, msg); err != nil {
			s.logger.Warn("fail to create automated message, skipping",
				zap.Int64("teacher_id", teacherID),
				zap.Int64("cr_id", cr.ID),
				zap.Error(err))
			continue
		}
		sentTo = append(sentTo, Delivery{
			CRID:      cr.ID,
			CRName:    cr.Name,
			ChatID:    chat.ID,
			MessageID: msg.ID,
		})
	}

	return &RoutingOutcome{
		Automated: true,
		SentTo:    sentTo,
		TotalCRs:  len(crs),
	}, nil
}
