package types

import "strings"

// NormalizeStatus is applied to every status on write and before every
// comparison. Upstream data drifted in casing and padding; tolerating it
// here is deliberate.
func NormalizeStatus(s string) string {
  return strings.ToLower(strings.TrimSpace(s))
}

func ValidOrderStatus(s string) bool {
  switch NormalizeStatus(s) {
  case OrderStatusPending, OrderStatusConfirmed, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
    return true
  default:
    return false
  }
}

func ValidRole(s string) bool {
  switch NormalizeStatus(s) {
  case RoleUser, RoleAdmin:
    return true
  default:
    return false
  }
}
