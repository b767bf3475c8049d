package inventory

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/ukydev/vehicle-inventory/internal/models"
	"github.com/ukydev/vehicle-inventory/internal/session"
	"github.com/ukydev/vehicle-inventory/internal/validation"
)

// DropdownOptions returns the configured options of category in display
// order.
func (s *Service) DropdownOptions(ctx context.Context, sess session.Session, category string, activeOnly bool) ([]models.DropdownOption, error) {
	if !sess.Authenticated() {
		return nil, ErrUnauthorized
	}
	category = strings.TrimSpace(category)
	if category == "" {
		return nil, required("category")
	}

	settings, err := s.store.Dropdowns.FindOptions(ctx, category, activeOnly)
	if err != nil {
		return nil, s.backendError("dropdown_options", err, logrus.Fields{"category": category})
	}
	options := make([]models.DropdownOption, 0, len(settings))
	for _, st := range settings {
		options = append(options, models.DropdownOption{Label: st.Label, Value: st.Value})
	}
	return options, nil
}

// CreateDropdownSetting adds an option to a category. Admin only.
func (s *Service) CreateDropdownSetting(ctx context.Context, sess session.Session, setting models.DropdownSetting) (*models.DropdownSetting, error) {
	if err := authorize(sess, models.PermManageSettings); err != nil {
		return nil, err
	}
	setting.Category = strings.TrimSpace(setting.Category)
	setting.Label = strings.TrimSpace(setting.Label)
	setting.Value = strings.TrimSpace(setting.Value)

	var violations validation.Violations
	if setting.Category == "" {
		violations = append(violations, required("category")...)
	}
	if setting.Label == "" {
		violations = append(violations, required("label")...)
	}
	if setting.Value == "" {
		violations = append(violations, required("value")...)
	}
	if setting.SortOrder < 0 {
		violations = append(violations, validation.FieldError{Field: "sort_order", Message: "must not be negative"})
	}
	if len(violations) > 0 {
		return nil, violations
	}

	if err := s.store.Dropdowns.InsertSetting(ctx, &setting); err != nil {
		return nil, s.backendError("create_dropdown_setting", err, logrus.Fields{"category": setting.Category})
	}
	return &setting, nil
}
