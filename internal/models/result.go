package models

// Result is the uniform envelope returned by every mutating operation so a
// client can roll back its optimistic update on Success == false.
type Result struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
}

// OK wraps data in a successful result.
func OK(data any) Result {
	return Result{Success: true, Data: data}
}

// Fail converts err into a failed result without leaking storage detail.
func Fail(err error) Result {
	return Result{
		Success: false,
		Error:   PublicMessage(err),
		Code:    ErrorCode(err),
	}
}
