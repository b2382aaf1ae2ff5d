package email

const verifyEmailTemplate = `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body {
            font-family: Arial, sans-serif;
            line-height: 1.6;
            color: #333;
            max-width: 600px;
            margin: 0 auto;
            padding: 20px;
        }
        .header {
            background-color: #4F46E5;
            color: white;
            padding: 20px;
            text-align: center;
            border-radius: 5px 5px 0 0;
        }
        .content {
            background-color: #f9f9f9;
            padding: 30px;
            border-radius: 0 0 5px 5px;
        }
        .otp {
            display: inline-block;
            background-color: #4F46E5;
            color: white;
            font-size: 28px;
            letter-spacing: 6px;
            padding: 12px 30px;
            border-radius: 5px;
            margin: 20px 0;
        }
        .footer {
            margin-top: 30px;
            font-size: 12px;
            color: #666;
            text-align: center;
        }
    </style>
</head>
<body>
    <div class="header">
        <h1>Welcome to HuyHung!</h1>
    </div>
    <div class="content">
        <h2>Verify your email address</h2>
        <p>Hi {{.CustomerName}},</p>
        <p>Thank you for signing up with {{.CustomerEmail}}. Enter the code below to verify your email address and activate your account.</p>

        <span class="otp">{{.OTP}}</span>

        <p style="margin-top: 30px;">If you didn't create an account, you can safely ignore this email.</p>
    </div>
    <div class="footer">
        <p>This code will expire in 10 minutes.</p>
        <p>&copy; 2026 HuyHung. All rights reserved.</p>
    </div>
</body>
</html>
`

const forgotPasswordTemplate = `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body {
            font-family: Arial, sans-serif;
            line-height: 1.6;
            color: #333;
            max-width: 600px;
            margin: 0 auto;
            padding: 20px;
        }
        .header {
            background-color: #4F46E5;
            color: white;
            padding: 20px;
            text-align: center;
            border-radius: 5px 5px 0 0;
        }
        .content {
            background-color: #f9f9f9;
            padding: 30px;
            border-radius: 0 0 5px 5px;
        }
        .password {
            display: inline-block;
            background-color: #111827;
            color: white;
            font-family: monospace;
            font-size: 20px;
            padding: 12px 30px;
            border-radius: 5px;
            margin: 20px 0;
        }
        .button {
            display: inline-block;
            background-color: #4F46E5;
            color: white !important;
            padding: 12px 30px;
            text-decoration: none;
            border-radius: 5px;
            margin: 20px 0;
        }
        .footer {
            margin-top: 30px;
            font-size: 12px;
            color: #666;
            text-align: center;
        }
    </style>
</head>
<body>
    <div class="header">
        <h1>Password Reset</h1>
    </div>
    <div class="content">
        <h2>Your temporary password</h2>
        <p>Hi {{.CustomerName}},</p>
        <p>We received a request to reset the password for {{.CustomerEmail}}. Use the temporary password below to log in, then change it right away.</p>

        <span class="password">{{.NewPassword}}</span>

        <p><a href="{{.LoginLink}}" class="button" style="color: white !important;">Log in</a></p>

        <p style="margin-top: 30px;">If you didn't request a password reset, please contact support immediately.</p>
    </div>
    <div class="footer">
        <p>&copy; 2026 HuyHung. All rights reserved.</p>
    </div>
</body>
</html>
`
