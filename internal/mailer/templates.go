package mailer

import "fmt"

// OrderEmail renders the order-status notification body. Used for the
// COD "Order Preparing" confirmation, the payment confirmation and every
// seller-driven status change.
func OrderEmail(name, orderID, status string) string {
	color := "#f9a825"
	switch status {
	case "Delivered", "Paid":
		color = "#2e7d32"
	case "Cancelled":
		color = "#d32f2f"
	}

	return fmt.Sprintf(`
    <div style="font-family:'Segoe UI',Arial,sans-serif;font-size:16px;line-height:1.6;color:#333;background:linear-gradient(145deg,#f9f9f9,#e6f2e6);padding:30px;border-radius:12px;max-width:600px;margin:0 auto;border:1px solid #d4d4d4;">
      <h2 style="color:#2e7d32;">Hello %s,</h2>
      <p style="margin-top:20px;">Your order <strong style="color:#1b5e20;">#%s</strong> status has been updated.</p>
      <p style="margin:10px 0;"><strong>Status:</strong>
        <span style="color:%s;font-weight:bold;">%s</span>
      </p>
      <hr style="margin:30px 0;border:none;border-top:1px solid #ccc;">
      <p style="font-size:15px;">Thank you for shopping with <strong style="color:#388e3c;">GreenCart</strong>!</p>
    </div>`, name, orderID, color, status)
}

// VerificationEmail renders the account verification code body, shared
// by customer and seller registration.
func VerificationEmail(name, code string) string {
	return fmt.Sprintf(`
    <div style="font-family: Arial, sans-serif; padding: 16px; background-color: #f6f6f6;">
      <div style="max-width: 480px; margin: auto; background: #fff; padding: 24px; border-radius: 8px;">
        <h2 style="color: #27ae60;">Hello %s,</h2>
        <p>Use the verification code below to activate your <strong>GreenCart</strong> account:</p>
        <div style="font-size: 32px; font-weight: bold; background: #eafaf1; color: #2ecc71; padding: 12px 24px; border-radius: 8px; text-align: center;">
          %s
        </div>
        <p style="margin-top: 16px;">This code will expire in <strong>10 minutes</strong>.</p>
        <hr style="margin: 24px 0;" />
        <p style="font-size: 12px; color: #888;">If you did not request this, you can safely ignore this email.</p>
      </div>
    </div>`, name, code)
}
