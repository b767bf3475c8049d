// Package validation holds the schemas that gate every write of vehicles and
// tasks, and the parsing of task list filters.
//
// Input arrives as a loosely typed field map (decoded JSON, form values) tagged
// with the entity Kind it claims to be. Each Kind has a fixed field list; values
// are coerced to their declared type first and then checked with
// go-playground/validator struct rules. All violations are collected, at most
// one per field.
package validation

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ukydev/vehicle-inventory/internal/models"
)

// Kind tags a payload with the entity schema it must satisfy.
type Kind string

const (
	KindVehicle     Kind = "vehicle"
	KindTask        Kind = "task"
	KindTaskFilters Kind = "task_filters"
)

// Payload is an untyped candidate record.
type Payload struct {
	Kind   Kind
	Fields map[string]any
}

// Result carries the normalized record for the payload's kind, or the
// violations that prevented normalization.
type Result struct {
	Kind       Kind
	Vehicle    *models.VehicleFields
	Task       *models.TaskFields
	Filters    *models.TaskFilters
	Violations Violations
}

// OK reports whether the payload passed validation.
func (r Result) OK() bool { return len(r.Violations) == 0 }

// Validator validates payloads. It is safe for concurrent use.
type Validator struct {
	validate *validator.Validate
	now      func() time.Time
}

// Option configures a Validator.
type Option func(*Validator)

// WithClock overrides the clock used for the model year ceiling.
func WithClock(now func() time.Time) Option {
	return func(v *Validator) { v.now = now }
}

// New returns a Validator with the vehicle and task rules registered.
func New(opts ...Option) *Validator {
	v := &Validator{
		validate: validator.New(validator.WithRequiredStructEnabled()),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(v)
	}

	v.validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// Registration only fails for an empty tag or nil func.
	_ = v.validate.RegisterValidation("modelyear", func(fl validator.FieldLevel) bool {
		year := fl.Field().Int()
		return year >= MinModelYear && year <= int64(v.maxModelYear())
	})
	return v
}

// MinModelYear is the earliest accepted vehicle year.
const MinModelYear = 1900

func (v *Validator) maxModelYear() int {
	return v.now().Year() + 1
}

// Validate dispatches the payload to the schema named by its kind.
func (v *Validator) Validate(p Payload) Result {
	res := Result{Kind: p.Kind}
	switch p.Kind {
	case KindVehicle:
		rec, errs := v.Vehicle(p.Fields)
		if errs == nil {
			res.Vehicle = &rec
		}
		res.Violations = errs
	case KindTask:
		rec, errs := v.Task(p.Fields)
		if errs == nil {
			res.Task = &rec
		}
		res.Violations = errs
	case KindTaskFilters:
		rec, errs := v.TaskFilters(p.Fields)
		if errs == nil {
			res.Filters = &rec
		}
		res.Violations = errs
	default:
		res.Violations = Violations{{Field: "kind", Message: fmt.Sprintf("unknown payload kind %q", p.Kind)}}
	}
	return res
}

type vehicleSchema struct {
	Make           string   `json:"make" validate:"required"`
	Model          string   `json:"model" validate:"required"`
	Year           int      `json:"year" validate:"modelyear"`
	VIN            string   `json:"vin" validate:"omitempty,len=17"`
	PurchaseDate   string   `json:"purchase_date" validate:"required"`
	Status         string   `json:"status" validate:"required,oneof=pending sold withdrew complete arb in_progress"`
	PickupLocation string   `json:"pickup_location" validate:"required"`
	Odometer       *float64 `json:"odometer" validate:"omitempty,gte=0"`
	BoughtPrice    *float64 `json:"bought_price" validate:"omitempty,gte=0"`
	TitleStatus    string   `json:"title_status" validate:"required,oneof=absent present in_transit received available_not_received released validated sent_not_validated"`
	ArbStatus      string   `json:"arb_status" validate:"required,oneof=absent present in_transit failed"`
}

var vehicleFields = []fieldSpec{
	{"make", stringField},
	{"model", stringField},
	{"year", intField},
	{"vin", stringField},
	{"purchase_date", stringField},
	{"status", stringField},
	{"pickup_location", stringField},
	{"odometer", numberField},
	{"bought_price", numberField},
	{"title_status", stringField},
	{"arb_status", stringField},
}

// Vehicle validates a vehicle write payload. Store-managed fields such as id
// and created_at are ignored.
func (v *Validator) Vehicle(fields map[string]any) (models.VehicleFields, Violations) {
	vals, errs := coerce(withoutRecordFields(fields), vehicleFields)
	s := vehicleSchema{
		Make:           vals.str("make"),
		Model:          vals.str("model"),
		Year:           vals.integer("year"),
		VIN:            vals.str("vin"),
		PurchaseDate:   vals.str("purchase_date"),
		Status:         vals.str("status"),
		PickupLocation: vals.str("pickup_location"),
		Odometer:       vals.num("odometer"),
		BoughtPrice:    vals.num("bought_price"),
		TitleStatus:    vals.str("title_status"),
		ArbStatus:      vals.str("arb_status"),
	}
	errs = v.check(s, errs)
	if len(errs) > 0 {
		return models.VehicleFields{}, errs.ordered(vehicleFields)
	}
	return models.VehicleFields{
		Make:           s.Make,
		Model:          s.Model,
		Year:           s.Year,
		VIN:            s.VIN,
		PurchaseDate:   s.PurchaseDate,
		Status:         models.VehicleStatus(s.Status),
		PickupLocation: s.PickupLocation,
		Odometer:       s.Odometer,
		BoughtPrice:    s.BoughtPrice,
		TitleStatus:    models.TitleStatus(s.TitleStatus),
		ArbStatus:      models.ArbStatus(s.ArbStatus),
	}, nil
}

type taskSchema struct {
	VehicleID  string `json:"vehicle_id"`
	TaskName   string `json:"task_name" validate:"required"`
	DueDate    string `json:"due_date" validate:"required"`
	Notes      string `json:"notes"`
	AssignedTo string `json:"assigned_to"`
	Category   string `json:"category"`
	Status     string `json:"status" validate:"required,oneof=pending completed cancelled"`
}

var taskFields = []fieldSpec{
	{"vehicle_id", stringField},
	{"task_name", stringField},
	{"due_date", stringField},
	{"notes", stringField},
	{"assigned_to", stringField},
	{"category", stringField},
	{"status", stringField},
}

// Task validates a task write payload. Store-managed fields are ignored.
func (v *Validator) Task(fields map[string]any) (models.TaskFields, Violations) {
	vals, errs := coerce(withoutRecordFields(fields), taskFields)
	s := taskSchema{
		VehicleID:  vals.str("vehicle_id"),
		TaskName:   vals.str("task_name"),
		DueDate:    vals.str("due_date"),
		Notes:      vals.str("notes"),
		AssignedTo: vals.str("assigned_to"),
		Category:   vals.str("category"),
		Status:     vals.str("status"),
	}
	errs = v.check(s, errs)
	if len(errs) > 0 {
		return models.TaskFields{}, errs.ordered(taskFields)
	}
	return models.TaskFields{
		VehicleID:  s.VehicleID,
		TaskName:   s.TaskName,
		DueDate:    s.DueDate,
		Notes:      s.Notes,
		AssignedTo: s.AssignedTo,
		Category:   s.Category,
		Status:     models.TaskStatus(s.Status),
	}, nil
}

var taskFilterFields = []fieldSpec{
	{"search", stringField},
	{"category", stringField},
	{"status", stringField},
	{"assigned_to", stringField},
	{"date_from", stringField},
	{"date_to", stringField},
}

// TaskFilters parses task list filters. Every field is optional.
func (v *Validator) TaskFilters(fields map[string]any) (models.TaskFilters, Violations) {
	vals, errs := coerce(fields, taskFilterFields)
	if len(errs) > 0 {
		return models.TaskFilters{}, errs.ordered(taskFilterFields)
	}
	return models.TaskFilters{
		Search:     vals.str("search"),
		Category:   vals.str("category"),
		Status:     vals.str("status"),
		AssignedTo: vals.str("assigned_to"),
		DateFrom:   vals.str("date_from"),
		DateTo:     vals.str("date_to"),
	}, nil
}

// check runs the struct rules and merges them into errs. A field that already
// failed coercion keeps its type message.
func (v *Validator) check(schema any, errs fieldErrors) fieldErrors {
	err := v.validate.Struct(schema)
	if err == nil {
		return errs
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return errs.add("_schema", err.Error())
	}
	for _, fe := range verrs {
		if _, seen := errs[fe.Field()]; seen {
			continue
		}
		errs = errs.add(fe.Field(), v.message(fe))
	}
	return errs
}

func (v *Validator) message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return "must be one of: " + strings.Join(strings.Fields(fe.Param()), ", ")
	case "len":
		return fmt.Sprintf("must be exactly %s characters", fe.Param())
	case "gte":
		return "must not be negative"
	case "modelyear":
		return fmt.Sprintf("must be between %d and %d", MinModelYear, v.maxModelYear())
	default:
		return fmt.Sprintf("failed %s rule", fe.Tag())
	}
}
