package service

import "strings"

// GenerationOptions 一次推理调用实际生效的参数
type GenerationOptions struct {
	Model       string
	Temperature float64
}

// ResolveOptions 合并请求参数与默认参数，两个字段各自独立：
// 请求中给出（模型名非空、温度非 nil）则使用请求值，否则使用默认值。
// 不校验温度范围，由推理服务自行拒绝非法值。
func ResolveOptions(model string, temperature *float64, defaults GenerationOptions) GenerationOptions {
	opts := defaults
	if m := strings.TrimSpace(model); m != "" {
		opts.Model = m
	}
	if temperature != nil {
		opts.Temperature = *temperature
	}
	return opts
}
