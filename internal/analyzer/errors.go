package analyzer

import "fmt"

// Error kinds recorded on failed runs and used to pick the user-facing
// message. Kept as plain strings so they can go straight into the run
// record and metrics labels.
const (
	KindBadInput       = "bad_input"
	KindTooLarge       = "too_large"
	KindHeaderNotFound = "header_not_found"
	KindQuota          = "quota"
	KindOverloaded     = "overloaded"
	KindBadFormat      = "bad_format"
	KindDeadline       = "deadline"
	KindGenerate       = "generate"
)

// userMessages maps error kinds to the Korean messages surfaced to the end
// user. Internal error detail stays in logs and the run record.
var userMessages = map[string]string{
	KindBadInput:       "필수 파일이 누락되었거나 잘못되었습니다. 업로드한 파일을 확인해주세요.",
	KindTooLarge:       "파일이 너무 큽니다. 전체 10MB 이하로 업로드해주세요.",
	KindHeaderNotFound: "CSV 헤더를 인식하지 못했습니다. 네이버 광고 보고서 원본 파일인지 확인해주세요.",
	KindQuota:          "API 사용량 한도를 초과했습니다. 잠시 후 다시 시도해주세요.",
	KindOverloaded:     "AI 모델이 일시적으로 과부하 상태입니다. 잠시 후 다시 시도해주세요.",
	KindBadFormat:      "AI 응답을 해석하지 못했습니다. 다시 시도해주세요.",
	KindDeadline:       "분석 시간이 초과되었습니다. 다시 시도해주세요.",
	KindGenerate:       "보고서 생성 중 오류가 발생했습니다.",
}

// Error wraps a run failure with its kind so callers can map it to an exit
// code, HTTP status or user message without string matching.
type Error struct {
	Kind string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// UserMessage returns the Korean end-user message for the failure.
func (e *Error) UserMessage() string {
	if msg, ok := userMessages[e.Kind]; ok {
		return msg
	}
	return userMessages[KindGenerate]
}
