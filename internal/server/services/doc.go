// Package services contains server-side business logic: accounts and
// tokens (UserService) and message history (MessageService).
package services
