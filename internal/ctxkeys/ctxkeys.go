package ctxkeys

// TraceIDKey 日志与存储层共享的链路追踪上下文键
type TraceIDKey struct{}
