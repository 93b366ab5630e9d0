package cache

// SubscriptionKey ключ последней подписки пользователя.
func SubscriptionKey(userID string) string {
	return "subscription:user:" + userID
}
