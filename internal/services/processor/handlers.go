package processor

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/magabrotheeeer/ott-reminder/internal/command"
	"github.com/magabrotheeeer/ott-reminder/internal/lib/sl"
	"github.com/magabrotheeeer/ott-reminder/internal/models"
)

// today возвращает текущую календарную дату. Вычисляется один раз на
// вызов команды, чтобы все строки одного ответа считались от одной даты.
func (s *Service) today() time.Time {
	now := s.now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

func (s *Service) handleStart(_ context.Context, _ []string, user *models.User) command.Response {
	plan, ok := s.plans[user.PlanType]
	planName := user.PlanType
	if ok {
		planName = plan.Name
	}

	message := fmt.Sprintf(`🎉 **Welcome to OTT Reminder Bot!**

👤 **Your Account:**
🆔 ID: `+"`%s`"+`
📦 Plan: %s
📋 Limit: %s subscriptions

Use `+"`/help`"+` for all commands!`,
		user.UniqueID, planName, formatQuota(user.MaxSubscriptions))

	return command.OKWithData(message, map[string]any{
		"user_info": user,
	}).WithRedirect("/dashboard")
}

func (s *Service) handleList(ctx context.Context, _ []string, user *models.User) command.Response {
	subs, err := s.subs.ListByChatID(ctx, user.TelegramChatID)
	if err != nil {
		s.log.Error("failed to list subscriptions", sl.Err(err))
		return command.Fail(fmt.Sprintf("❌ **Error fetching subscriptions:** %s", truncate(err.Error(), 100)))
	}

	if len(subs) == 0 {
		return command.OKWithData(
			"📋 **No Subscriptions Found**\n\nUse `/add username email service expiry` to add your first subscription!",
			map[string]any{"subscriptions": []*models.Subscription{}})
	}

	today := s.today()
	var b strings.Builder
	b.WriteString("📋 **Your Subscriptions:**\n\n")
	for i, sub := range subs {
		writeSubscriptionLine(&b, i+1, sub, today, listSoonDays)
	}

	return command.OKWithData(b.String(), map[string]any{"subscriptions": subs})
}

func (s *Service) handleAdd(ctx context.Context, args []string, user *models.User) command.Response {
	username, email, service, expiryArg := args[0], args[1], args[2], args[3]
	amount := "0"
	if len(args) > 4 {
		amount = strings.Join(args[4:], " ")
	}

	if !strings.Contains(email, "@") || !strings.Contains(email, ".") {
		return command.Fail(fmt.Sprintf("❌ **Invalid email:** `%s`\n\nPlease provide a valid email address (e.g., john@gmail.com).", email))
	}

	expiry, err := time.Parse(models.DateLayout, expiryArg)
	if err != nil {
		return command.Fail("❌ **Invalid date format!** Use YYYY-MM-DD (e.g., 2025-12-31)")
	}
	if expiry.Before(s.today()) {
		return command.Fail(fmt.Sprintf("❌ **Invalid date:** `%s` is in the past.\n\nExpiry date must be today or later.", expiryArg))
	}

	if user.MaxSubscriptions != models.UnlimitedSubscriptions {
		count, err := s.subs.CountByChatID(ctx, user.TelegramChatID)
		if err != nil {
			s.log.Error("failed to count subscriptions", sl.Err(err))
			return command.Fail(fmt.Sprintf("❌ **Error adding subscription:** %s", truncate(err.Error(), 100)))
		}
		if count >= user.MaxSubscriptions {
			return command.Fail("❌ **Subscription limit reached!**\n\nUpgrade your plan to add more subscriptions.").
				WithRedirect("/upgrade")
		}
	}

	sub := models.Subscription{
		TelegramChatID: user.TelegramChatID,
		ServiceName:    service,
		Username:       username,
		Email:          email,
		ExpiryDate:     expiry,
		AmountReceived: amount,
		Note:           "Added via unified command processor",
		CreatedAt:      s.now(),
	}
	id, err := s.subs.CreateSubscription(ctx, sub)
	if err != nil {
		s.log.Error("failed to create subscription", sl.Err(err))
		return command.Fail(fmt.Sprintf("❌ **Error adding subscription:** %s", truncate(err.Error(), 100)))
	}
	sub.ID = id
	s.log.Info("created subscription", "id", id, "service", service)

	message := fmt.Sprintf("✅ **Subscription Added!**\n\n🎬 Service: %s\n👤 Username: %s\n📧 Email: %s\n💰 Amount: ₹%s\n📅 Expiry: %s",
		service, username, email, amount, expiryArg)
	return command.OKWithData(message, map[string]any{
		"subscription_id": id,
		"subscription":    sub,
	}).WithRedirect("/dashboard")
}

func (s *Service) handleDelete(ctx context.Context, args []string, user *models.User) command.Response {
	subID := args[0]

	subs, err := s.subs.ListByChatID(ctx, user.TelegramChatID)
	if err != nil {
		s.log.Error("failed to list subscriptions", sl.Err(err))
		return command.Fail(fmt.Sprintf("❌ **Delete Error:** %s", truncate(err.Error(), 100)))
	}

	// Совпадение по полному ID или префиксу, побеждает первая найденная.
	var target *models.Subscription
	for _, sub := range subs {
		if sub.ID == subID || strings.HasPrefix(sub.ID, subID) {
			target = sub
			break
		}
	}

	if target == nil {
		hints := "• No subscriptions found"
		if len(subs) > 0 {
			var lines []string
			for _, sub := range subs {
				lines = append(lines, fmt.Sprintf("• `%s` — %s", shortID(sub.ID), sub.ServiceName))
				if len(lines) == 3 {
					break
				}
			}
			hints = strings.Join(lines, "\n")
		}
		return command.Fail(fmt.Sprintf("❌ **Subscription not found!**\n\n🔍 **Searched for:** `%s`\n\n**Available IDs:**\n%s\n\nUse `/list` to see all subscriptions.",
			subID, hints))
	}

	if _, err := s.subs.RemoveSubscription(ctx, target.ID); err != nil {
		s.log.Error("failed to remove subscription", sl.Err(err))
		return command.Fail(fmt.Sprintf("❌ **Delete Error:** %s", truncate(err.Error(), 100)))
	}
	s.log.Info("deleted subscription", "id", target.ID)

	message := fmt.Sprintf("✅ **Successfully Deleted!**\n\n🎬 **Service:** %s\n👤 **Username:** %s\n📧 **Email:** %s\n🗑️ **ID:** `%s`",
		target.ServiceName, target.Username, target.Email, shortID(target.ID))
	return command.OKWithData(message, map[string]any{
		"deleted_subscription": target,
	}).WithRedirect("/dashboard")
}

func (s *Service) handleSearch(ctx context.Context, args []string, user *models.User) command.Response {
	keyword := strings.ToLower(args[0])

	subs, err := s.subs.ListByChatID(ctx, user.TelegramChatID)
	if err != nil {
		s.log.Error("failed to list subscriptions", sl.Err(err))
		return command.Fail(fmt.Sprintf("❌ **Search Error:** %s", truncate(err.Error(), 100)))
	}

	if len(subs) == 0 {
		return command.OKWithData(
			"📋 **No subscriptions found**\n\nAdd subscriptions first using `/add`",
			map[string]any{"results": []*models.Subscription{}})
	}

	var matches []*models.Subscription
	for _, sub := range subs {
		if strings.Contains(strings.ToLower(sub.Username), keyword) ||
			strings.Contains(strings.ToLower(sub.Email), keyword) ||
			strings.Contains(strings.ToLower(sub.ServiceName), keyword) {
			matches = append(matches, sub)
		}
	}

	if len(matches) == 0 {
		return command.OKWithData(
			fmt.Sprintf("🔍 **No subscriptions found** for `%s`\n\nTry searching for:\n• Service name (e.g., Netflix)\n• Username (e.g., john_netflix)\n• Email (e.g., john@gmail.com)", args[0]),
			map[string]any{"results": []*models.Subscription{}})
	}

	today := s.today()
	var b strings.Builder
	fmt.Fprintf(&b, "🔍 **Search Results for** `%s`:\n\n", args[0])
	for i, sub := range matches {
		writeSubscriptionLine(&b, i+1, sub, today, searchSoonDays)
	}

	return command.OKWithData(b.String(), map[string]any{"results": matches})
}

func (s *Service) handleHelp(_ context.Context, args []string, user *models.User) command.Response {
	visible := s.registry.ForRole(user.Role)

	if len(args) > 0 && args[0] != "" {
		name := strings.ToLower(args[0])
		def, ok := s.registry.Get(name)
		if !ok || !def.AllowsRole(user.Role) {
			return command.Fail(fmt.Sprintf("❌ **Command not found or not available:** `%s`", name))
		}

		var b strings.Builder
		fmt.Fprintf(&b, "📖 **Help for /%s**\n\n", def.Name)
		fmt.Fprintf(&b, "**Description:** %s\n\n", def.HelpText)
		fmt.Fprintf(&b, "**Usage:** `%s`\n\n", def.Usage())
		b.WriteString("**Examples:**\n")
		for _, ex := range def.Examples {
			fmt.Fprintf(&b, "• `%s`\n", ex)
		}
		return command.OKWithData(b.String(), map[string]any{"command_help": def})
	}

	var b strings.Builder
	b.WriteString("📖 **Available Commands:**\n\n")
	names := make([]string, 0, len(visible))
	for _, def := range visible {
		fmt.Fprintf(&b, "**/%s** - %s\n", def.Name, def.Description)
		names = append(names, def.Name)
	}
	b.WriteString("\n💡 Use `/help command_name` for detailed help on any command!")

	return command.OKWithData(b.String(), map[string]any{"available_commands": names})
}

func (s *Service) handleStats(ctx context.Context, _ []string, user *models.User) command.Response {
	subs, err := s.subs.ListByChatID(ctx, user.TelegramChatID)
	if err != nil {
		s.log.Error("failed to list subscriptions", sl.Err(err))
		return command.Fail(fmt.Sprintf("❌ **Stats Error:** %s", truncate(err.Error(), 100)))
	}

	today := s.today()
	var active, expiring, expired int
	var totalAmount float64
	for _, sub := range subs {
		switch sub.Status(today, searchSoonDays) {
		case models.StatusExpired:
			expired++
		case models.StatusExpiringSoon:
			expiring++
		default:
			active++
		}
		// Нечисловые суммы пропускаются в сумме, но учитываются в счетчиках.
		if amount, err := strconv.ParseFloat(sub.AmountReceived, 64); err == nil {
			totalAmount += amount
		}
	}

	plan, ok := s.plans[user.PlanType]
	planName, planPrice := user.PlanType, "-"
	if ok {
		planName, planPrice = plan.Name, plan.Price
	}
	validity := "Lifetime"
	if user.ExpiryDate != nil {
		validity = user.ExpiryDate.Format(models.DateLayout)
	}

	message := fmt.Sprintf(`📊 **Account Statistics**

👤 **Account Info:**
🆔 ID: `+"`%s`"+`
📦 Plan: %s
🎭 Role: %s

📋 **Subscriptions:**
📈 Total: %d/%s
✅ Active: %d
🟡 Expiring (≤7 days): %d
🔴 Expired: %d
💰 Total amount: ₹%.2f

📅 **Plan Details:**
💰 Price: %s
⏳ Validity: %s`,
		user.UniqueID, planName, titleCase(user.Role),
		len(subs), formatQuota(user.MaxSubscriptions), active, expiring, expired, totalAmount,
		planPrice, validity)

	return command.OKWithData(message, map[string]any{
		"stats": map[string]any{
			"total_subscriptions":    len(subs),
			"active_subscriptions":   active,
			"expiring_subscriptions": expiring,
			"expired_subscriptions":  expired,
			"total_amount":           totalAmount,
			"plan_info":              plan,
			"user_info":              user,
		},
	})
}

func (s *Service) handleSendReminder(ctx context.Context, _ []string, user *models.User) command.Response {
	subs, err := s.subs.ListByChatID(ctx, user.TelegramChatID)
	if err != nil {
		s.log.Error("failed to list subscriptions", sl.Err(err))
		return command.Fail(fmt.Sprintf("❌ **Reminder Error:** %s", truncate(err.Error(), 100)))
	}

	today := s.today()
	var expiring []*models.Subscription
	for _, sub := range subs {
		if days := sub.DaysLeft(today); days >= 0 && days <= searchSoonDays {
			expiring = append(expiring, sub)
		}
	}

	if len(expiring) == 0 {
		return command.OK("✅ **No subscriptions expiring** in the next 7 days!")
	}

	if err := s.mailer.SendExpiryReminder(ctx, expiring[0].Email, user.TelegramUsername, expiring); err != nil {
		s.log.Error("failed to send reminder email", sl.Err(err))
		return command.Fail(fmt.Sprintf("❌ **Reminder Error:** %s", truncate(err.Error(), 100)))
	}
	s.log.Info("reminder email sent", "count", len(expiring))

	return command.OKWithData(
		fmt.Sprintf("✅ **Reminder sent!** Email notification sent for %d expiring subscription(s).", len(expiring)),
		map[string]any{"expiring_subscriptions": expiring})
}

func (s *Service) handleUpgrade(_ context.Context, args []string, user *models.User) command.Response {
	if len(args) > 0 && args[0] != "" {
		planType := strings.ToLower(args[0])
		plan, ok := s.plans[planType]
		if !ok {
			return command.Fail(fmt.Sprintf("❌ **Invalid plan:** `%s`\n\n**Available plans:** %s",
				planType, strings.Join(models.PlanOrder, ", ")))
		}

		var b strings.Builder
		fmt.Fprintf(&b, "💎 **%s**\n\n💰 **Price:** %s\n📋 **Subscriptions:** %s\n\n**Features:**\n",
			plan.Name, plan.Price, formatQuota(plan.MaxSubscriptions))
		for _, feature := range plan.Features {
			fmt.Fprintf(&b, "• %s\n", feature)
		}
		b.WriteString("\n🔗 Contact admin to upgrade!")

		return command.OKWithData(b.String(), map[string]any{"plan_info": plan}).WithRedirect("/upgrade")
	}

	var b strings.Builder
	b.WriteString("💎 **Available Plans:**\n\n")
	for _, key := range models.PlanOrder {
		plan := s.plans[key]
		if key == user.PlanType {
			fmt.Fprintf(&b, "**%s (Current)** ✅\n", plan.Name)
		} else {
			fmt.Fprintf(&b, "**%s**\n", plan.Name)
		}
		fmt.Fprintf(&b, "💰 %s\n📋 %s subscriptions\n─────────────────\n\n", plan.Price, formatQuota(plan.MaxSubscriptions))
	}
	b.WriteString("Use `/upgrade plan_name` for details!")

	return command.OKWithData(b.String(), map[string]any{
		"all_plans":    s.plans,
		"current_plan": user.PlanType,
	}).WithRedirect("/upgrade")
}

func (s *Service) handleForcedReminder(ctx context.Context, _ []string, _ *models.User) command.Response {
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		s.log.Error("failed to list users", sl.Err(err))
		return command.Fail(fmt.Sprintf("❌ **Reminder Error:** %s", truncate(err.Error(), 100)))
	}

	queued := 0
	for _, u := range users {
		job := models.ReminderJob{
			TelegramChatID:   u.TelegramChatID,
			TelegramUsername: u.TelegramUsername,
		}
		if err := s.queue.PublishReminder(job); err != nil {
			s.log.Error("failed to publish reminder job", sl.Err(err),
				"unique_id", u.UniqueID)
			continue
		}
		queued++
	}

	return command.OKWithData(
		fmt.Sprintf("✅ **Forced reminders queued** for %d of %d user(s).", queued, len(users)),
		map[string]any{"queued": queued, "total_users": len(users)})
}

func (s *Service) handlePromote(ctx context.Context, args []string, user *models.User) command.Response {
	targetID, role := args[0], strings.ToLower(args[1])

	if role != models.RoleManager && role != models.RoleAdmin {
		return command.Fail(fmt.Sprintf("❌ **Invalid role:** `%s`\n\nUsers can be promoted to `manager` or `admin` only.", role))
	}

	target, err := s.users.FindByUniqueID(ctx, targetID)
	if err != nil || target == nil {
		return command.Fail(fmt.Sprintf("❌ **User not found:** `%s`\n\nCheck the ID and try again.", targetID))
	}

	if err := s.users.UpdateRole(ctx, targetID, role); err != nil {
		s.log.Error("failed to update role", sl.Err(err))
		return command.Fail(fmt.Sprintf("❌ **Promote Error:** %s", truncate(err.Error(), 100)))
	}
	s.log.Info("promoted user", "target", targetID, "role", role, "by", user.UniqueID)

	return command.OKWithData(
		fmt.Sprintf("✅ **User promoted!**\n\n🆔 ID: `%s`\n🎭 New role: %s", targetID, role),
		map[string]any{"user_id": targetID, "role": role})
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// shortID возвращает первые 8 символов идентификатора для вывода.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func writeSubscriptionLine(b *strings.Builder, n int, sub *models.Subscription, today time.Time, soonDays int) {
	statusIcons := map[string]string{
		models.StatusExpired:      "🔴 EXPIRED",
		models.StatusExpiringSoon: "🟡 EXPIRING SOON",
		models.StatusActive:       "✅ ACTIVE",
	}
	days := sub.DaysLeft(today)
	fmt.Fprintf(b, "**%d. %s** %s\n", n, sub.ServiceName, statusIcons[sub.Status(today, soonDays)])
	fmt.Fprintf(b, "🆔 ID: `%s`\n", shortID(sub.ID))
	fmt.Fprintf(b, "👤 Username: `%s`\n", sub.Username)
	fmt.Fprintf(b, "📧 Email: `%s`\n", sub.Email)
	fmt.Fprintf(b, "💰 Amount: ₹%s\n", sub.AmountReceived)
	fmt.Fprintf(b, "📅 Expires: `%s` (%d days)\n", sub.ExpiryDate.Format(models.DateLayout), days)
	b.WriteString("─────────────────────\n\n")
}
