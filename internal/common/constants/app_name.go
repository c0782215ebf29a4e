package constants

const (
	APP_STOREFRONT       = "framed-archive"
	APP_CART_SERVICE     = "cart-service"
	APP_ORDER_SERVICE    = "order-service"
	APP_USER_SERVICE     = "user-service"
	APP_CATALOG_SERVICE  = "catalog-service"
	APP_MIGRATION        = "migration"
	AUDIENCE_USER        = "audience-user"
	HEADER_GUEST_SESSION = "X-Guest-Session"
	COOKIE_GUEST_SESSION = "guest_session"
	GUEST_USER_ID        = "guest"
)
