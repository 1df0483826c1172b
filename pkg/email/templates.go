package email

import (
	"fmt"
	"strings"
	"time"
)

type mfaCopy struct {
	subject  string
	title    string
	greeting string
	body     string
	expiry   string
	ignore   string
}

var mfaCopies = map[string]mfaCopy{
	"en": {
		subject:  "Your verification code",
		title:    "Verification Code",
		greeting: "Hi %s,",
		body:     "Use the code below to finish signing in:",
		expiry:   "This code will expire in %d minutes.",
		ignore:   "If you did not try to sign in, someone may know your password. Change it as soon as possible.",
	},
	"ko": {
		subject:  "인증 코드 안내",
		title:    "인증 코드",
		greeting: "%s 님, 안녕하세요.",
		body:     "아래 코드를 입력하여 로그인을 완료하세요:",
		expiry:   "이 코드는 %d분 후에 만료됩니다.",
		ignore:   "로그인을 시도하지 않았다면 비밀번호를 즉시 변경하세요.",
	},
	"ja": {
		subject:  "認証コードのお知らせ",
		title:    "認証コード",
		greeting: "%s 様",
		body:     "以下のコードを入力してサインインを完了してください:",
		expiry:   "このコードの有効期限は%d分です。",
		ignore:   "サインインに心当たりがない場合は、すぐにパスワードを変更してください。",
	},
}

// MFACodeTemplate returns the subject and HTML body of a verification code mail. Unknown
// languages fall back to English; regional tags such as "ko-KR" use their base language.
func MFACodeTemplate(language, userID, code string, ttl time.Duration) (string, string) {
	text, ok := mfaCopies[baseLanguage(language)]
	if !ok {
		text = mfaCopies["en"]
	}

	minutes := int(ttl.Minutes())
	if minutes < 1 {
		minutes = 5
	}

	html := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>%s</title>
</head>
<body style="margin: 0; padding: 0; font-family: Arial, sans-serif; background-color: #f4f4f4;">
    <table role="presentation" style="width: 100%%; border-collapse: collapse;">
        <tr>
            <td align="center" style="padding: 40px 0;">
                <table role="presentation" style="width: 600px; border-collapse: collapse; background-color: #ffffff; border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.1);">
                    <!-- Header -->
                    <tr>
                        <td style="padding: 40px 30px; text-align: center; background-color: #4F46E5; border-radius: 8px 8px 0 0;">
                            <h1 style="margin: 0; color: #ffffff; font-size: 28px;">%s</h1>
                        </td>
                    </tr>
                    <!-- Content -->
                    <tr>
                        <td style="padding: 40px 30px;">
                            <p style="margin: 0 0 20px; font-size: 16px; line-height: 24px; color: #333333;">%s</p>
                            <p style="margin: 0 0 20px; font-size: 16px; line-height: 24px; color: #333333;">%s</p>
                            <p style="margin: 30px 0; text-align: center; font-size: 32px; letter-spacing: 8px; font-weight: bold; color: #4F46E5;">%s</p>
                            <p style="margin: 20px 0 0; font-size: 14px; line-height: 20px; color: #666666;">%s</p>
                            <p style="margin: 20px 0 0; font-size: 14px; line-height: 20px; color: #666666;">%s</p>
                        </td>
                    </tr>
                </table>
            </td>
        </tr>
    </table>
</body>
</html>
`,
		text.title,
		text.title,
		fmt.Sprintf(text.greeting, userID),
		text.body,
		code,
		fmt.Sprintf(text.expiry, minutes),
		text.ignore,
	)

	return text.subject, html
}

func baseLanguage(language string) string {
	language = strings.ToLower(strings.TrimSpace(language))
	if i := strings.IndexAny(language, "-_"); i > 0 {
		return language[:i]
	}
	return language
}
