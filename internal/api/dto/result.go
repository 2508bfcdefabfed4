package dto

// Result 对外统一结果
// 协调层所有公开方法都返回 Result，错误不以 error 形式抛给界面层
type Result[T any] struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
	Data    T      `json:"data,omitempty"`
}

// Ok 成功结果
func Ok[T any](data T) Result[T] {
	return Result[T]{Success: true, Data: data}
}

// Fail 失败结果
// err 为空时使用 fallback 作为错误信息
func Fail[T any](err error, fallback string) Result[T] {
	msg := fallback
	if err != nil && err.Error() != "" {
		msg = err.Error()
	}
	return Result[T]{Success: false, Error: msg}
}

// Empty 无数据载荷
type Empty struct{}
