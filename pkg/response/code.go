package response

// 业务状态码
const (
	CodeSuccess = 0
	CodeError   = 1

	// 用户/认证模块错误 100xx
	ErrUserExists   = 10001
	ErrUserNotFound = 10002
	ErrAuthFailed   = 10003
	ErrTokenInvalid = 10004
	ErrNoPermission = 10005

	// 订单模块错误 200xx
	ErrOrderNotFound   = 20001
	ErrBadTransition   = 20002
	ErrQuantityInvalid = 20003

	// 余额/交易模块错误 300xx
	ErrBalanceInsufficient = 30001
	ErrTransactionInvalid  = 30002

	// 邀请码模块错误 400xx
	ErrInviteNotFound = 40001
	ErrInviteExpired  = 40002
	ErrInviteUsedUp   = 40003

	// 卡密模块错误 500xx
	ErrCardKeyNotFound = 50001
	ErrCardKeyUsed     = 50002
	ErrCardKeyExpired  = 50003

	// 系统错误 900xx
	ErrServerInternal  = 90001
	ErrInvalidParam    = 90002
	ErrTooManyRequests = 90003
	ErrDataNotFound    = 90004
)
