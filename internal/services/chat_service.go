package services

import "strings"

// ChatService is the deterministic fallback responder. It is pure, has no
// network or database dependency, and never fails: any message maps to some
// canned response. It answers when the AI gateway is unavailable.
type ChatService struct{}

// NewChatService creates a new chat service
func NewChatService() *ChatService {
	return &ChatService{}
}

type cannedReply struct {
	keywords []string
	response string
}

var cannedReplies = []cannedReply{
	{
		keywords: []string{"hello", "hi ", "good morning", "good afternoon"},
		response: "Hello! I'm the Segamat Complaint Management System assistant. You can ask me about complaint status, how to submit a report, or department contacts.",
	},
	{
		keywords: []string{"status", "progress", "update"},
		response: "You can check the status of any complaint on the public complaints page. Statuses move from Pending to In Progress to Resolved.",
	},
	{
		keywords: []string{"submit", "report", "complain", "file"},
		response: "To submit a complaint, use the submission form with a short title, a detailed description, and the location of the issue. You may submit anonymously.",
	},
	{
		keywords: []string{"department", "contact", "phone", "email"},
		response: "Each complaint is routed to the responsible municipal department. Department office contacts are listed on the Departments page.",
	},
	{
		keywords: []string{"password", "login", "account"},
		response: "For account or login issues, please use the password reset option on the login page or contact support.",
	},
}

// Respond maps a message to a canned answer via keyword matching. The first
// matching entry wins; unmatched messages get the generic help response.
func (s *ChatService) Respond(message string) string {
	message = strings.ToLower(message)
	for _, reply := range cannedReplies {
		for _, keyword := range reply.keywords {
			if strings.Contains(message, keyword) {
				return reply.response
			}
		}
	}
	return "I'm not sure how to help with that. Please visit the Help page or contact support for assistance."
}
