package model

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// ID 远端资源 ID
// 服务端可能返回数字或字符串，这里统一按字符串保存，序列化时保留原始形态
type ID string

// UnmarshalJSON 兼容数字与字符串
func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*id = ID(n.String())
	return nil
}

// MarshalJSON 纯数字按数字输出，其余按字符串输出
func (id ID) MarshalJSON() ([]byte, error) {
	if id == "" {
		return []byte(`""`), nil
	}
	if _, err := strconv.ParseInt(string(id), 10, 64); err == nil {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

func (id ID) String() string { return string(id) }

// IDOf 整数 ID 转换
func IDOf(n int64) ID {
	return ID(strconv.FormatInt(n, 10))
}
