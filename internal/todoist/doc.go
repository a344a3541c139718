// Package todoist provides a validated client for the Todoist REST v2
// API.
//
// This package wraps the upstream REST API and provides functionality
// for:
//   - Managing tasks (list, get, create, update, close, reopen, delete)
//   - Managing projects (list, get, create, update, delete)
//   - Reading labels (list, get)
//
// Upstream JSON is reconciled against embedded JSON Schema documents
// before it is decoded into typed entities. Single-object responses
// validate strictly; listing responses validate per item leniently,
// substituting the raw unvalidated item and logging a warning when an
// individual item drifts from the documented shape. Create and update
// inputs always validate strictly before any network call.
//
// All failures surface as the tagged *Error type with a Kind
// discriminator (validation, api, network), enabling exhaustive
// handling at each front end.
//
// # Example Usage
//
//	client, err := todoist.NewClient(token)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	tasks, err := client.ListTasks(ctx, todoist.TaskFilter{ProjectID: "2203306141"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	task, err := client.CreateTask(ctx, todoist.CreateTaskInput{
//	    Content:  "Buy milk",
//	    Priority: 4,
//	    DueString: "tomorrow",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
package todoist
