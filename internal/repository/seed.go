package repository

import "github.com/kmatsui/go-todo-service/internal/model"

// DevSeed returns the fixture tasks loaded into the in-memory store when the
// service runs in the development environment.
func DevSeed() []model.Task {
	return []model.Task{
		{Title: "Complete project report", Description: "Finish the quarterly project report", Status: "Pending", Priority: model.PriorityHigh},
		{Title: "Buy groceries", Description: "Milk, eggs, bread, butter, and vegetables", Status: "In Progress", Priority: model.PriorityMedium},
		{Title: "Call plumber", Description: "Fix the leaking sink in the kitchen", Status: "Pending", Priority: model.PriorityHigh},
		{Title: "Renew gym membership", Description: "Renew membership for the upcoming year", Status: "Completed", Priority: model.PriorityLow},
		{Title: "Doctor's appointment", Description: "Annual checkup with Dr. Smith", Status: "Pending", Priority: model.PriorityMedium},
		{Title: "Clean the house", Description: "General house cleaning and organizing", Status: "In Progress", Priority: model.PriorityLow},
		{Title: "Prepare presentation", Description: "Prepare slides for the company meeting", Status: "Pending", Priority: model.PriorityHigh},
		{Title: "Pay electricity bill", Description: "Pay the monthly electricity bill before due date", Status: "Completed", Priority: model.PriorityMedium},
		{Title: "Order birthday gift", Description: "Buy a gift for Sarah's birthday", Status: "Pending", Priority: model.PriorityLow},
		{Title: "Submit assignment", Description: "Complete and submit the university assignment", Status: "Pending", Priority: model.PriorityHigh},
	}
}
