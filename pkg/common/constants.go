package common

const (
	RedisKeySentimentCache = "sentiment:%s"

	SourceTwitter   = "twitter"
	SourceFarcaster = "farcaster"

	AIProviderNone        = "none"
	AIProviderGemini      = "gemini"
	AIProviderOpenAI      = "openai"
	AIProviderHuggingFace = "huggingface"

	CacheDriverFile   = "file"
	CacheDriverRedis  = "redis"
	CacheDriverMemory = "memory"
)
