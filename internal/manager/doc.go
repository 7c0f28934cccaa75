// Package manager 组装 document manager：每个 manager 绑定一个 YAML 映射目录
// （metadata.Factory）和一个 hydrator 生成器（hydrator.Factory），并通过 Registry
// 以标准化名称对外提供查询，供 warmer 与诊断接口使用。
package manager
