package config

import "testing"

func TestExpandEnv(t *testing.T) {
	t.Setenv("TEST_CFG_HOST", "db.internal")

	cases := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "已定义的环境变量优先",
			in:   "host: ${TEST_CFG_HOST:localhost}",
			want: "host: db.internal",
		},
		{
			name: "未定义时使用默认值",
			in:   "host: ${TEST_CFG_MISSING:localhost}",
			want: "host: localhost",
		},
		{
			name: "默认值可以为空字符串",
			in:   "password: ${TEST_CFG_MISSING:}",
			want: "password: ",
		},
		{
			name: "无默认值且未定义时原样保留",
			in:   "key: ${TEST_CFG_MISSING}",
			want: "key: ${TEST_CFG_MISSING}",
		},
		{
			name: "同一行多个占位符",
			in:   "${TEST_CFG_HOST:x}:${TEST_CFG_PORT:5432}",
			want: "db.internal:5432",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := expandEnv(tc.in); got != tc.want {
				t.Fatalf("expandEnv(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}
