package todoist

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

const validTaskJSON = `{
	"id": "2995104339",
	"content": "Buy milk",
	"description": "",
	"is_completed": false,
	"labels": ["errand"],
	"order": 1,
	"priority": 1,
	"project_id": "2203306141",
	"creator_id": "2671355",
	"created_at": "2019-12-11T22:36:50.000000Z",
	"comment_count": 0,
	"url": "https://todoist.com/showTask?id=2995104339",
	"due": {
		"date": "2019-12-12",
		"string": "tomorrow",
		"is_recurring": false
	}
}`

func TestParseTaskValid(t *testing.T) {
	task, err := ParseTask([]byte(validTaskJSON))
	if err != nil {
		t.Fatalf("ParseTask returned error: %v", err)
	}
	if task.ID != "2995104339" {
		t.Errorf("expected id 2995104339, got %s", task.ID)
	}
	if task.Content != "Buy milk" {
		t.Errorf("expected content 'Buy milk', got %s", task.Content)
	}
	if task.Due == nil {
		t.Fatal("expected due to be set")
	}
	if task.Due.Date != "2019-12-12" {
		t.Errorf("expected due date 2019-12-12, got %s", task.Due.Date)
	}
}

func TestParseTaskPriorityOutOfRange(t *testing.T) {
	raw := `{"id": "1", "content": "x", "priority": 9}`

	_, err := ParseTask([]byte(raw))
	if err == nil {
		t.Fatal("expected validation error for priority 9")
	}

	e, ok := AsError(err)
	if !ok {
		t.Fatalf("expected *Error, got %T", err)
	}
	if e.Kind != KindValidation {
		t.Errorf("expected kind %s, got %s", KindValidation, e.Kind)
	}

	found := false
	for _, f := range e.Fields {
		if f.Path == "priority" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a field error naming priority, got %+v", e.Fields)
	}
}

func TestParseTaskMissingRequiredFields(t *testing.T) {
	_, err := ParseTask([]byte(`{"description": "no id or content"}`))
	if err == nil {
		t.Fatal("expected validation error for missing id and content")
	}
	if e, ok := AsError(err); !ok || e.Kind != KindValidation {
		t.Fatalf("expected validation-kind error, got %v", err)
	}
}

// Absent and explicitly-null due.datetime are the same case: expected
// missingness, decoded as nil, never a validation failure.
func TestParseTaskDueDatetimeAbsentVsNull(t *testing.T) {
	absent := `{"id": "1", "content": "x", "due": {"date": "2024-01-01", "string": "Jan 1", "is_recurring": false}}`
	null := `{"id": "1", "content": "x", "due": {"date": "2024-01-01", "string": "Jan 1", "is_recurring": false, "datetime": null, "timezone": null}}`

	taskAbsent, err := ParseTask([]byte(absent))
	if err != nil {
		t.Fatalf("ParseTask with absent datetime: %v", err)
	}
	taskNull, err := ParseTask([]byte(null))
	if err != nil {
		t.Fatalf("ParseTask with null datetime: %v", err)
	}

	if taskAbsent.Due.Datetime != nil {
		t.Errorf("expected nil datetime for absent field, got %v", *taskAbsent.Due.Datetime)
	}
	if taskNull.Due.Datetime != nil {
		t.Errorf("expected nil datetime for null field, got %v", *taskNull.Due.Datetime)
	}
	if taskAbsent.Due.Timezone != nil || taskNull.Due.Timezone != nil {
		t.Error("expected nil timezone in both decodings")
	}
}

func TestParseTaskDueNull(t *testing.T) {
	task, err := ParseTask([]byte(`{"id": "1", "content": "x", "due": null}`))
	if err != nil {
		t.Fatalf("ParseTask with null due: %v", err)
	}
	if task.Due != nil {
		t.Errorf("expected nil due, got %+v", task.Due)
	}
}

// A listing with one invalid item must not fail; the invalid item is
// logged and passed through best-effort.
func TestParseTaskListLenient(t *testing.T) {
	raw := `[
		{"id": "1", "content": "valid task"},
		{"id": "2", "content": "bad priority", "priority": 99}
	]`

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	tasks, err := ParseTaskList([]byte(raw), logger)
	if err != nil {
		t.Fatalf("ParseTaskList returned error: %v", err)
	}
	if len(tasks) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(tasks))
	}
	if tasks[1].Priority != 99 {
		t.Errorf("expected invalid item passed through with priority 99, got %d", tasks[1].Priority)
	}

	logged := buf.String()
	if !strings.Contains(logged, "failed schema validation") {
		t.Errorf("expected a validation warning in log output, got: %s", logged)
	}
	if !strings.Contains(logged, "bad priority") {
		t.Errorf("expected offending payload in log output, got: %s", logged)
	}
}

func TestParseTaskListNotArray(t *testing.T) {
	_, err := ParseTaskList([]byte(`{"id": "1"}`), nil)
	if err == nil {
		t.Fatal("expected error for non-array listing")
	}
	if e, ok := AsError(err); !ok || e.Kind != KindValidation {
		t.Fatalf("expected validation-kind error, got %v", err)
	}
}

func TestValidateCreateTaskInput(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{
			name: "valid minimal",
			raw:  `{"content": "Buy milk"}`,
		},
		{
			name: "valid full",
			raw:  `{"content": "Buy milk", "project_id": "123", "labels": ["errand"], "priority": 4, "due_string": "tomorrow"}`,
		},
		{
			name:    "missing content",
			raw:     `{"project_id": "123"}`,
			wantErr: true,
		},
		{
			name:    "empty content",
			raw:     `{"content": ""}`,
			wantErr: true,
		},
		{
			name:    "priority zero",
			raw:     `{"content": "x", "priority": 0}`,
			wantErr: true,
		},
		{
			name:    "priority five",
			raw:     `{"content": "x", "priority": 5}`,
			wantErr: true,
		},
		{
			name:    "labels not strings",
			raw:     `{"content": "x", "labels": [1, 2]}`,
			wantErr: true,
		},
		{
			name:    "not json",
			raw:     `{`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input, err := ValidateCreateTaskInput([]byte(tt.raw))
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected validation error")
				}
				e, ok := AsError(err)
				if !ok || e.Kind != KindValidation {
					t.Fatalf("expected validation-kind error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if input.Content == "" {
				t.Error("expected content to be decoded")
			}
		})
	}
}

func TestValidateUpdateTaskInputEmptyObject(t *testing.T) {
	// Every field is optional on update; an empty patch is valid here
	// and rejected upstream if Todoist dislikes it.
	if _, err := ValidateUpdateTaskInput([]byte(`{}`)); err != nil {
		t.Fatalf("unexpected error for empty update: %v", err)
	}
}

func TestValidateCreateProjectInput(t *testing.T) {
	input, err := ValidateCreateProjectInput([]byte(`{"name": "Inbox", "color": "red"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if input.Name != "Inbox" || input.Color != "red" {
		t.Errorf("unexpected decode: %+v", input)
	}

	if _, err := ValidateCreateProjectInput([]byte(`{"color": "red"}`)); err == nil {
		t.Fatal("expected validation error for missing name")
	}
}

func TestJSONPointerToPath(t *testing.T) {
	tests := []struct {
		pointer string
		want    string
	}{
		{"", "(root)"},
		{"/", "(root)"},
		{"/priority", "priority"},
		{"/due/datetime", "due.datetime"},
		{"/labels/0", "labels.0"},
	}
	for _, tt := range tests {
		if got := jsonPointerToPath(tt.pointer); got != tt.want {
			t.Errorf("jsonPointerToPath(%q) = %q, want %q", tt.pointer, got, tt.want)
		}
	}
}
