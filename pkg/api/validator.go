package api

import "errors"

// Validator - интерфейс, который могут реализовать DTO
type Validator interface {
	Validate() error
}

func (p AttackPayload) Validate() error {
	if p.TargetID == "" {
		return errors.New("targetId is required")
	}
	if p.Damage < 0 {
		return errors.New("damage cannot be negative")
	}
	return nil
}

func (p SkillPayload) Validate() error {
	if p.SkillID == "" {
		return errors.New("skillId is required")
	}
	return nil
}

func (p ItemPayload) Validate() error {
	if p.ItemID == "" {
		return errors.New("itemId is required")
	}
	return nil
}

func (p DeltaPayload) Validate() error {
	if p.TargetID == "" {
		return errors.New("targetId is required")
	}
	if p.Amount == 0 {
		return errors.New("amount cannot be zero")
	}
	return nil
}

func (p StatusPayload) Validate() error {
	if p.TargetID == "" {
		return errors.New("targetId is required")
	}
	if p.StatusID == "" {
		return errors.New("statusId is required")
	}
	return nil
}
