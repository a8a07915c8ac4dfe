package constants

// Redis Key 前缀和格式常量
// 使用统一的命名规范: {app}:{entity}:{unique_id}
const (
	// AppPrefix 是所有Redis Key的统一应用前缀
	AppPrefix = "profile"

	// EntityResult 分析结果实体
	EntityResult = "result"

	// KeyAnalysisResult 按文件MD5缓存的分析结果 (STRING, JSON)
	// 格式: profile:result:{md5}
	KeyAnalysisResult = AppPrefix + ":" + EntityResult + ":%s"
)
