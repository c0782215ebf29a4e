package log

const (
	KeyAppName            = "app"
	KeyRequestID          = "requestId"
	KeyProcess            = "process"
	KeyTag                = "tag"
	KeyTraceID            = "traceId"
	KeySpanID             = "spanId"
	KeyToken              = "token"
	KeyEmail              = "email"
	KeyUserID             = "userId"
	KeyGuestSession       = "guestSession"
	KeyOwner              = "owner"
	KeyRequest            = "request"
	KeyRequestBody        = "requestBody"
	KeyRequestHeader      = "requestHeader"
	KeyRequestHost        = "host"
	KeyRequestIp          = "requesterIP"
	KeyRequestMethod      = "requestMethod"
	KeyRequestProcessedAt = "requestProcessedAt"
	KeyRequestURI         = "requestURI"
	KeyRequestURL         = "requestURL"
	KeyPathValues         = "pathValues"
	KeyConfig             = "config"
	KeyCacheKey           = "cacheKey"
	KeyStorageKey         = "storageKey"
	KeyCart               = "cart"
	KeyCartItem           = "cartItem"
	KeyCartItemID         = "cartItemId"
	KeyCartItems          = "cartItems"
	KeyCartItemsCount     = "cartItemsCount"
	KeyCartItemsMerged    = "cartItemsMerged"
	KeyCartFormat         = "cartFormat"
	KeyMergeToken         = "mergeToken"
	KeyPrice              = "price"
	KeyBasePrice          = "basePrice"
	KeyAmount             = "amount"
	KeyOrder              = "order"
	KeyOrderID            = "orderId"
	KeyOrders             = "orders"
	KeyOrderStatus        = "orderStatus"
	KeyGatewayOrderID     = "gatewayOrderId"
	KeyPaymentID          = "paymentId"
	KeyRateLimitKey       = "rateLimitKey"
	KeyPinCode            = "pinCode"
	KeyStatsSort          = "statsSort"
	KeyAction             = "action"
	KeyDbURL              = "dbUrl"
	KeyMigrationPath      = "migrationPath"
)
