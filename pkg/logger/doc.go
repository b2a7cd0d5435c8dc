// Package logger provides a context-aware wrapper around Go's slog package
// adding functional options for configuration, helper attribute constructors,
// and transparent injection of values stored in context.Context.
//
// The package standardises structured logging across the connector by
// exposing a single factory, New, that creates a *slog.Logger configured by
// a set of Option functions. These options allow you to:
//
//   - Select an output format (text or json)
//   - Set the minimum log level
//   - Supply default slog.Attr values applied to every record
//   - Register ContextExtractor callbacks that inject attributes pulled
//     from a context value (for example a request id) every time Handle is
//     invoked.
//
// Helper constructors such as Group, Error, UserID, FacebookID live in
// attr.go and return commonly-used slog.Attr instances to keep attribute
// naming consistent across the codebase.
//
// # Usage
//
//	import "github.com/dmitrymomot/socialconnect/pkg/logger"
//
//	func main() {
//	    log := logger.New(
//	        logger.WithDevelopment("socialconnect"),
//	        logger.WithContextValue("request_id", ctxKeyRequestID),
//	    )
//	    logger.SetAsDefault(log)
//
//	    ctx := context.WithValue(context.Background(), ctxKeyRequestID, "abc-123")
//	    log.InfoContext(ctx, "profile stored",
//	        logger.UserID(userID),
//	        logger.Duration(time.Since(start)),
//	    )
//	}
//
// # Error Handling
//
// Helper functions Error and Errors produce attributes only when the
// supplied error value is non-nil allowing calls like:
//
//	log.Info("operation succeeded", logger.Error(err))
//
// without an additional nil check.
package logger
