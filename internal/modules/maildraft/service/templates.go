package service

import (
	"fmt"

	"bibliomaniacs.org/bookreviews/internal/entity"
)

func approvedHTML(review *entity.Review, senderName string) string {
	comment := ""
	if review.CommentToUser != "" {
		comment = fmt.Sprintf(`
		<div style="background-color: #faf6e8; border-left: 4px solid #b7950b; padding: 15px; margin: 20px 0;">
			<p style="margin: 0;"><strong>Message from the Editorial Team:</strong></p>
			<p style="margin-top: 10px;">%s</p>
		</div>`, review.CommentToUser)
	}

	return fmt.Sprintf(`<html>
	<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
		<div style="max-width: 600px; margin: 0 auto; padding: 20px;">
			<h2 style="color: #2b7a4b;">Book Review Approved</h2>

			<p>Dear %s,</p>

			<p>
				We are pleased to inform you that your review of
				<strong>%s</strong> by %s has been approved and will be published.
			</p>

			<div style="background-color: #f4f8f6; border-left: 4px solid #2b7a4b; padding: 15px; margin: 20px 0;">
				<p style="margin: 0;">
					<strong>Volunteer Credit:</strong> %.1f hours
				</p>
			</div>
			%s
			<p>
				Thank you for your thoughtful contribution. Your work helps readers make
				informed decisions and strengthens our review community.
			</p>

			<p>
				Sincerely,<br>
				<strong>%s</strong>
			</p>

			<hr style="border: none; border-top: 1px solid #eee; margin: 30px 0;">
			<p style="font-size: 12px; color: #999;">
				This is an automated message. Please do not reply.
			</p>
		</div>
	</body>
</html>`, review.ReviewerName(), review.BookTitle, review.Author, review.TimeEarned, comment, senderName)
}

func approvedText(review *entity.Review, senderName string) string {
	comment := ""
	if review.CommentToUser != "" {
		comment = fmt.Sprintf("Message from the Editorial Team:\n%s\n\n", review.CommentToUser)
	}

	return fmt.Sprintf(`Dear %s,

We are pleased to inform you that your review of "%s" by %s
has been approved and will be published.

Volunteer Credit: %.1f hours

%sThank you for your thoughtful contribution to our review community.

Sincerely,
%s

---
This is an automated message. Please do not reply.
`, review.ReviewerName(), review.BookTitle, review.Author, review.TimeEarned, comment, senderName)
}

func rejectedHTML(review *entity.Review, senderName string) string {
	comment := ""
	if review.CommentToUser != "" {
		comment = fmt.Sprintf(`
		<div style="background-color: #fbeeee; border-left: 4px solid #c0392b; padding: 15px; margin: 20px 0;">
			<p style="margin: 0;"><strong>Editorial Feedback:</strong></p>
			<p style="margin-top: 10px;">%s</p>
		</div>`, review.CommentToUser)
	}

	return fmt.Sprintf(`<html>
	<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
		<div style="max-width: 600px; margin: 0 auto; padding: 20px;">
			<h2 style="color: #c0392b;">Book Review Status Update</h2>

			<p>Dear %s,</p>

			<p>
				Thank you for submitting your review of
				<strong>%s</strong> by %s.
			</p>

			<p>
				After careful consideration, we are unable to approve this submission
				in its current form.
			</p>
			%s
			<p>
				We encourage you to review our submission guidelines and consider
				submitting a revised version in the future.
			</p>

			<p>
				Sincerely,<br>
				<strong>%s</strong>
			</p>

			<hr style="border: none; border-top: 1px solid #eee; margin: 30px 0;">
			<p style="font-size: 12px; color: #999;">
				This is an automated message. Please do not reply.
			</p>
		</div>
	</body>
</html>`, review.ReviewerName(), review.BookTitle, review.Author, comment, senderName)
}

func rejectedText(review *entity.Review, senderName string) string {
	comment := ""
	if review.CommentToUser != "" {
		comment = review.CommentToUser + "\n\n"
	}

	return fmt.Sprintf(`Dear %s,

Thank you for submitting your review of "%s" by %s.

After careful consideration, we are unable to approve this submission
in its current form.

%sWe encourage you to review our guidelines and consider submitting
a revised version in the future.

Sincerely,
%s

---
This is an automated message. Please do not reply.
`, review.ReviewerName(), review.BookTitle, review.Author, comment, senderName)
}
