package retrieval

import "errors"

// ErrVectorDisabled 表示向量检索未配置或不可用；调用方应降级为无参考片段生成。
var ErrVectorDisabled = errors.New("vector retrieval disabled")
