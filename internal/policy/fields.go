package policy

import (
	"github.com/geocoder89/taskhub/internal/domain/task"
	"github.com/geocoder89/taskhub/internal/domain/user"
)

type Field string

const (
	FieldTitle       Field = "title"
	FieldDescription Field = "description"
	FieldAssignedTo  Field = "assignedTo"
	FieldStatus      Field = "status"
	FieldPriority    Field = "priority"
	FieldDueDate     Field = "dueDate"
	FieldResponse    Field = "response"
)

type Fields map[Field]struct{}

func fieldSet(fs ...Field) Fields {
	out := make(Fields, len(fs))
	for _, f := range fs {
		out[f] = struct{}{}
	}
	return out
}

func (f Fields) Has(field Field) bool {
	_, ok := f[field]
	return ok
}

var (
	allTaskFields      = fieldSet(FieldTitle, FieldDescription, FieldAssignedTo, FieldStatus, FieldPriority, FieldDueDate, FieldResponse)
	assigneeTaskFields = fieldSet(FieldStatus, FieldResponse)
)

// TaskUpdate decides whether p may update t and which submitted fields take
// effect. Derived timestamps follow from status and response.
func TaskUpdate(p user.Principal, t task.Task) (Decision, Fields) {
	if p.IsAdmin() {
		return allow(), allTaskFields
	}
	if isAssignee(p, t) {
		return allow(), assigneeTaskFields
	}
	return deny("Not authorized to update this task"), Fields{}
}
